package modalsvc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

const controllerTemplate = "<div id='controllertemplate'>controller template</div>"

type harness struct {
	svc         *Service
	fetcher     *fakeFetcher
	scopes      *fakeScopes
	body        *fakeContainer
	compiler    *fakeCompiler
	controllers *fakeControllers
	scheduler   *manualScheduler
	cache       *MemoryCache
}

type character struct {
	Name string
}

type elementProbe struct {
	sawElement bool
	inputs     Inputs
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		fetcher: newFakeFetcher(map[string]string{
			"some/controllertemplate.html": controllerTemplate,
		}),
		scopes:    &fakeScopes{},
		body:      &fakeContainer{name: "body"},
		compiler:  &fakeCompiler{},
		scheduler: &manualScheduler{},
		cache:     NewMemoryCache(),
	}
	h.controllers = &fakeControllers{ctors: map[string]func(Inputs) (any, error){
		"CloseController": func(in Inputs) (any, error) {
			s := in[InputScope].(*fakeScope)
			s.set("close", in[InputClose])
			return struct{}{}, nil
		},
		"InputsController": func(in Inputs) (any, error) {
			s := in[InputScope].(*fakeScope)
			s.set("input1", in["input1"])
			s.set("input2", in["input2"])
			s.set("close", in[InputClose])
			return struct{}{}, nil
		},
		"LocalsController": func(in Inputs) (any, error) {
			s := in[InputScope].(*fakeScope)
			s.set("locals", in[InputLocals])
			return struct{}{}, nil
		},
		"ControllerAsController": func(Inputs) (any, error) {
			return &character{Name: "Fry"}, nil
		},
		"ElementProbe": func(in Inputs) (any, error) {
			_, ok := in.Element()
			return &elementProbe{sawElement: ok, inputs: in}, nil
		},
		"Failing": func(Inputs) (any, error) {
			return nil, errors.New("controller exploded")
		},
	}}

	registry := &fakeRegistry{values: map[string]any{
		"Dep1": map[string]int{"x": 0},
		"Dep2": map[string]string{"y": "XX"},
	}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h.svc = New(Environment{
		Registry:    registry,
		Fetcher:     h.fetcher,
		Controllers: h.controllers,
		Compiler:    h.compiler,
		Scopes:      h.scopes,
		Body:        h.body,
	}, WithLogger(logger), WithScheduler(h.scheduler), WithTemplateCache(h.cache))
	return h
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestShowModal_Success(t *testing.T) {
	h := newHarness(t)
	ctx := testContext(t)

	m, err := h.svc.Show(ctx, ShowOptions{
		Controller:  "CloseController",
		TemplateURL: "some/controllertemplate.html",
	})
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}

	if m.Controller == nil || m.Scope == nil || m.Element == nil {
		t.Fatalf("modal has nil parts: %+v", m)
	}
	if m.Close.Settled() {
		t.Error("close future settled before close was called")
	}
	if h.body.count() != 1 {
		t.Errorf("body children: got %d, want 1", h.body.count())
	}
	if m.Scope.(*fakeScope).get("close") == nil {
		t.Error("close function was not injected into the controller")
	}
}

func TestShowModal_NoController(t *testing.T) {
	h := newHarness(t)
	ctx := testContext(t)

	fut := h.svc.ShowModal(ctx, ShowOptions{TemplateURL: "some/controllertemplate.html"})

	_, ok, err := fut.Result()
	if !ok {
		t.Fatal("expected future to be rejected immediately")
	}
	if !errors.Is(err, ErrNoController) {
		t.Errorf("err: got %v, want %v", err, ErrNoController)
	}
	if n := h.fetcher.total(); n != 0 {
		t.Errorf("fetches: got %d, want 0", n)
	}
	if n := h.scopes.created.Load(); n != 0 {
		t.Errorf("scopes created: got %d, want 0", n)
	}
}

func TestShowModal_NoTemplate(t *testing.T) {
	h := newHarness(t)
	ctx := testContext(t)

	_, err := h.svc.Show(ctx, ShowOptions{Controller: "CloseController"})
	if !errors.Is(err, ErrNoTemplate) {
		t.Fatalf("err: got %v, want %v", err, ErrNoTemplate)
	}
	if n := h.scopes.created.Load(); n != 0 {
		t.Errorf("scopes created: got %d, want 0", n)
	}
}

func TestShowModal_LiteralTemplateWins(t *testing.T) {
	h := newHarness(t)
	ctx := testContext(t)

	m, err := h.svc.Show(ctx, ShowOptions{
		Controller:  "CloseController",
		Template:    "<div>literal</div>",
		TemplateURL: "some/controllertemplate.html",
	})
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if got := m.Element.(*fakeElement).markup; got != "<div>literal</div>" {
		t.Errorf("markup: got %q, want literal", got)
	}
	if n := h.fetcher.total(); n != 0 {
		t.Errorf("fetches: got %d, want 0", n)
	}
}

func TestShowModal_TemplateURLCached(t *testing.T) {
	h := newHarness(t)
	ctx := testContext(t)
	opts := ShowOptions{Controller: "CloseController", TemplateURL: "some/controllertemplate.html"}

	first, err := h.svc.Show(ctx, opts)
	if err != nil {
		t.Fatalf("first Show failed: %v", err)
	}
	second, err := h.svc.Show(ctx, opts)
	if err != nil {
		t.Fatalf("second Show failed: %v", err)
	}

	if n := h.fetcher.total(); n != 1 {
		t.Errorf("fetches: got %d, want 1", n)
	}
	a := first.Element.(*fakeElement).markup
	b := second.Element.(*fakeElement).markup
	if a != b || a != controllerTemplate {
		t.Errorf("markup mismatch: %q vs %q", a, b)
	}
}

func TestShowModal_ControllerAs(t *testing.T) {
	h := newHarness(t)
	ctx := testContext(t)

	m, err := h.svc.Show(ctx, ShowOptions{
		Controller:   "ControllerAsController",
		ControllerAs: "futurama",
		Template:     controllerTemplate,
	})
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}

	if got := h.controllers.identities[0]; got != "ControllerAsController as futurama" {
		t.Errorf("identity: got %q", got)
	}
	c, ok := m.Scope.(*fakeScope).get("futurama").(*character)
	if !ok || c.Name != "Fry" {
		t.Errorf("scope.futurama: got %#v", m.Scope.(*fakeScope).get("futurama"))
	}
}

func TestShowModal_Inputs(t *testing.T) {
	h := newHarness(t)
	ctx := testContext(t)

	m, err := h.svc.Show(ctx, ShowOptions{
		Controller:  "InputsController",
		TemplateURL: "some/controllertemplate.html",
		Inputs:      Inputs{"input1": 15, "input2": "hi"},
	})
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}

	s := m.Scope.(*fakeScope)
	if got := s.get("input1"); got != 15 {
		t.Errorf("input1: got %v, want 15", got)
	}
	if got := s.get("input2"); got != "hi" {
		t.Errorf("input2: got %v, want hi", got)
	}
}

func TestShowModal_InputsShadowBuiltins(t *testing.T) {
	h := newHarness(t)
	ctx := testContext(t)

	_, err := h.svc.Show(ctx, ShowOptions{
		Controller: "LocalsController",
		Template:   controllerTemplate,
		Inputs:     Inputs{InputLocals: "overridden", InputElement: "caller"},
	})
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}

	in := h.controllers.lastInputs()
	if got := in[InputLocals]; got != "overridden" {
		t.Errorf("locals: got %v, want overridden", got)
	}
	if _, ok := in[InputElement].(*fakeElement); !ok {
		t.Errorf("element: got %T, want the linked element", in[InputElement])
	}
}

func TestShowModal_ElementAddedAfterConstruction(t *testing.T) {
	h := newHarness(t)
	ctx := testContext(t)

	m, err := h.svc.Show(ctx, ShowOptions{Controller: "ElementProbe", Template: controllerTemplate})
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}

	probe := m.Controller.(*elementProbe)
	if probe.sawElement {
		t.Error("controller saw its element during construction")
	}
	el, ok := probe.inputs.Element()
	if !ok || el != m.Element {
		t.Error("element not published on the controller's inputs after linking")
	}
}

func TestShowModal_AppendElement(t *testing.T) {
	h := newHarness(t)
	ctx := testContext(t)
	target := &fakeContainer{name: "custom"}

	_, err := h.svc.Show(ctx, ShowOptions{
		Controller:    "CloseController",
		Template:      controllerTemplate,
		AppendElement: target,
	})
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if target.count() != 1 {
		t.Errorf("custom target children: got %d, want 1", target.count())
	}
	if h.body.count() != 0 {
		t.Errorf("body children: got %d, want 0", h.body.count())
	}
}

func TestShowModal_Locals(t *testing.T) {
	t.Run("no locals injects nil", func(t *testing.T) {
		h := newHarness(t)
		m, err := h.svc.Show(testContext(t), ShowOptions{
			Controller:  "LocalsController",
			TemplateURL: "some/controllertemplate.html",
		})
		if err != nil {
			t.Fatalf("Show failed: %v", err)
		}
		if got := m.Scope.(*fakeScope).get("locals"); got.(map[string]any) != nil {
			t.Errorf("locals: got %v, want nil", got)
		}
	})

	t.Run("named dependencies", func(t *testing.T) {
		h := newHarness(t)
		m, err := h.svc.Show(testContext(t), ShowOptions{
			Controller:  "LocalsController",
			TemplateURL: "some/controllertemplate.html",
			Locals:      map[string]Local{"t1": Named("Dep1"), "t2": Named("Dep2")},
		})
		if err != nil {
			t.Fatalf("Show failed: %v", err)
		}
		locals := m.Scope.(*fakeScope).get("locals").(map[string]any)
		if got := locals["t1"].(map[string]int)["x"]; got != 0 {
			t.Errorf("t1.x: got %d, want 0", got)
		}
		if got := locals["t2"].(map[string]string)["y"]; got != "XX" {
			t.Errorf("t2.y: got %q, want XX", got)
		}
	})

	t.Run("resolver returning future", func(t *testing.T) {
		h := newHarness(t)
		m, err := h.svc.Show(testContext(t), ShowOptions{
			Controller:  "LocalsController",
			TemplateURL: "some/controllertemplate.html",
			Locals: map[string]Local{"t": Resolve(Resolver{
				Inject: []string{"Dep2"},
				Func: func(_ context.Context, args ...any) (any, error) {
					return Resolved[any](map[string]string{"z": "qwe"}), nil
				},
			})},
		})
		if err != nil {
			t.Fatalf("Show failed: %v", err)
		}
		locals := m.Scope.(*fakeScope).get("locals").(map[string]any)
		if got := locals["t"].(map[string]string)["z"]; got != "qwe" {
			t.Errorf("t.z: got %q, want qwe", got)
		}
	})

	t.Run("rejected resolver fails the modal", func(t *testing.T) {
		h := newHarness(t)
		someError := errors.New("some error")
		_, err := h.svc.Show(testContext(t), ShowOptions{
			Controller:  "LocalsController",
			TemplateURL: "some/controllertemplate.html",
			Locals: map[string]Local{"t": ResolveFunc(func(context.Context) (any, error) {
				return Rejected[any](someError), nil
			})},
		})
		if err != someError {
			t.Fatalf("err: got %v, want exactly %v", err, someError)
		}
		if n := h.scopes.created.Load(); n != 0 {
			t.Errorf("scopes created: got %d, want 0", n)
		}
		if n := h.fetcher.total(); n != 0 {
			t.Errorf("fetches: got %d, want 0", n)
		}
		if h.body.count() != 0 {
			t.Errorf("body children: got %d, want 0", h.body.count())
		}
	})
}

func TestShowModal_FetchErrorVerbatim(t *testing.T) {
	h := newHarness(t)
	transport := errors.New("connection refused")
	h.fetcher.err = transport

	_, err := h.svc.Show(testContext(t), ShowOptions{
		Controller:  "CloseController",
		TemplateURL: "some/controllertemplate.html",
	})
	if err != transport {
		t.Fatalf("err: got %v, want %v", err, transport)
	}
	if _, ok := h.cache.Get("some/controllertemplate.html"); ok {
		t.Error("failed fetch was cached")
	}
	if n := h.scopes.created.Load(); n != 0 {
		t.Errorf("scopes created: got %d, want 0", n)
	}
}

func TestShowModal_FrameworkFailuresDestroyScope(t *testing.T) {
	tests := []struct {
		name string
		opts ShowOptions
		mut  func(*harness)
	}{
		{
			name: "compile error",
			opts: ShowOptions{Controller: "CloseController", Template: "{{broken"},
		},
		{
			name: "controller error",
			opts: ShowOptions{Controller: "Failing", Template: controllerTemplate},
		},
		{
			name: "unknown controller",
			opts: ShowOptions{Controller: "Nope", Template: controllerTemplate},
		},
		{
			name: "mount error",
			opts: ShowOptions{Controller: "CloseController", Template: controllerTemplate},
			mut:  func(h *harness) { h.body.fail = errors.New("body gone") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if tt.mut != nil {
				tt.mut(h)
			}
			_, err := h.svc.Show(testContext(t), tt.opts)
			if err == nil {
				t.Fatal("expected error")
			}
			s := h.scopes.last.Load()
			if s == nil || !s.isDestroyed() {
				t.Error("scope was not destroyed after failure")
			}
		})
	}
}

func TestClose_AsyncAndTeardown(t *testing.T) {
	h := newHarness(t)
	ctx := testContext(t)

	m, err := h.svc.Show(ctx, ShowOptions{Controller: "CloseController", Template: controllerTemplate})
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	closeFn := m.Scope.(*fakeScope).get("close").(CloseFunc)

	closeFn("done", 0)
	if m.Close.Settled() {
		t.Fatal("close settled synchronously")
	}
	if h.scheduler.pending() != 1 {
		t.Fatalf("scheduled: got %d, want 1", h.scheduler.pending())
	}

	h.scheduler.flush()

	result, err := m.Close.Await(ctx)
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if result != "done" {
		t.Errorf("result: got %v, want done", result)
	}
	if !m.Scope.(*fakeScope).isDestroyed() {
		t.Error("scope not destroyed after close")
	}
	if m.Element.(*fakeElement).attached() {
		t.Error("element still attached after close")
	}
	if h.body.count() != 0 {
		t.Errorf("body children: got %d, want 0", h.body.count())
	}

	closeFn("again", 0)
	h.scheduler.flush()
	if got, _ := m.Close.Await(ctx); got != "done" {
		t.Errorf("result after second close: got %v, want done", got)
	}
}

func TestClose_Delay(t *testing.T) {
	h := newHarness(t)

	m, err := h.svc.Show(testContext(t), ShowOptions{Controller: "CloseController", Template: controllerTemplate})
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	closeFn := m.Scope.(*fakeScope).get("close").(CloseFunc)

	closeFn(nil, 250*time.Millisecond)
	closeFn(nil, -time.Second)

	if got := h.scheduler.delays[0]; got != 250*time.Millisecond {
		t.Errorf("delay: got %v, want 250ms", got)
	}
	if got := h.scheduler.delays[1]; got != 0 {
		t.Errorf("negative delay: got %v, want 0", got)
	}
}

func TestClose_TeardownBeforeCallerCallbacks(t *testing.T) {
	h := newHarness(t)
	ctx := testContext(t)

	m, err := h.svc.Show(ctx, ShowOptions{Controller: "CloseController", Template: controllerTemplate})
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}

	var destroyedFirst bool
	m.Close.Then(func(any) {
		destroyedFirst = m.Scope.(*fakeScope).isDestroyed()
	})

	m.Scope.(*fakeScope).get("close").(CloseFunc)(true, 0)
	h.scheduler.flush()
	<-m.Close.Done()

	if !destroyedFirst {
		t.Error("caller callback ran before teardown")
	}
}

func TestClose_RealTimer(t *testing.T) {
	h := newHarness(t)
	h.svc.scheduler = TimerScheduler{}
	ctx := testContext(t)

	m, err := h.svc.Show(ctx, ShowOptions{Controller: "CloseController", Template: controllerTemplate})
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}

	m.Scope.(*fakeScope).get("close").(CloseFunc)(42, 10*time.Millisecond)
	got, err := m.Close.Await(ctx)
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if got != 42 {
		t.Errorf("result: got %v, want 42", got)
	}
}
