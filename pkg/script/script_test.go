package script

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chazu/vxcsg/pkg/scene"
)

func TestEvaluateBoxInstanceBakes(t *testing.T) {
	e := NewEngine(scene.Settings{VoxelsPerUnit: 1})
	sc, evalErrs, err := e.Evaluate(`
(def base (defpart "base" (box 0 0 0 4 4 4) :role :solid))
(instance base)
`)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(evalErrs) != 0 {
		t.Fatalf("evalErrs = %v, want none", evalErrs)
	}
	result, err := sc.Bake(nil)
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if result.Volume() != 64 {
		t.Errorf("volume = %d, want 64", result.Volume())
	}
}

func TestEvaluateHoleSubtracts(t *testing.T) {
	e := NewEngine(scene.Settings{VoxelsPerUnit: 1})
	sc, evalErrs, err := e.Evaluate(`
(def base (defpart "base" (box 0 0 0 4 4 4) :role :solid))
(def hole (defpart "hole" (box 1 1 1 2 2 2) :role :hole))
(instance base)
(instance hole)
`)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(evalErrs) != 0 {
		t.Fatalf("evalErrs = %v, want none", evalErrs)
	}
	result, err := sc.Bake(nil)
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if result.Volume() != 63 {
		t.Errorf("volume = %d, want 63", result.Volume())
	}
}

func TestEvaluateEmptySourceProducesEmptyScene(t *testing.T) {
	e := NewEngine(scene.Settings{VoxelsPerUnit: 1})
	sc, evalErrs, err := e.Evaluate("")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(evalErrs) != 0 {
		t.Fatalf("evalErrs = %v, want none", evalErrs)
	}
	if len(sc.Instances) != 0 {
		t.Errorf("Instances = %d, want 0", len(sc.Instances))
	}
}

func TestEvaluateSyntaxErrorReturnsEvalErrorsNotFatal(t *testing.T) {
	e := NewEngine(scene.Settings{VoxelsPerUnit: 1})
	sc, evalErrs, err := e.Evaluate(`(box 0 0 0 1 1`)
	if err != nil {
		t.Fatalf("Evaluate returned a fatal error for a syntax error: %v", err)
	}
	if sc != nil {
		t.Error("scene should be nil on evaluation failure")
	}
	if len(evalErrs) == 0 {
		t.Error("expected at least one EvalError for malformed source")
	}
}

func TestEvaluateUnknownBuiltinReturnsEvalError(t *testing.T) {
	e := NewEngine(scene.Settings{VoxelsPerUnit: 1})
	_, evalErrs, err := e.Evaluate(`(this-function-does-not-exist 1 2 3)`)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Error("expected an EvalError for an unknown function")
	}
}

func TestEvaluateIsConcurrencySafe(t *testing.T) {
	e := NewEngine(scene.Settings{VoxelsPerUnit: 1})
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, _, err := e.Evaluate(`(def p (defpart "p" (box 0 0 0 1 1 1) :role :solid))`)
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Errorf("concurrent Evaluate: %v", err)
		}
	}
}

func TestPreprocessSourceRewritesKeywordsAndKebabCase(t *testing.T) {
	got := preprocessSource(`(rotate-any s :axis :z :degrees 30)`)
	if !strings.Contains(got, "rotate_any") {
		t.Errorf("rotate-any was not rewritten to rotate_any: %q", got)
	}
	if !strings.Contains(got, kwPrefix+"axis") || !strings.Contains(got, kwPrefix+"z") {
		t.Errorf("keywords were not rewritten to string literals: %q", got)
	}
}

func TestWaitWithTimeoutReportsCommittedProgress(t *testing.T) {
	e := NewEngine(scene.Settings{VoxelsPerUnit: 1})
	ch := make(chan evalResult) // never sends
	var progress atomic.Int64
	progress.Store(3)

	done := make(chan struct{})
	var resultErr error
	go func() {
		defer close(done)
		_, _, resultErr = e.waitWithTimeout(ch, 1, &progress)
	}()

	select {
	case <-done:
		if resultErr == nil {
			t.Fatal("expected a timeout error, got nil")
		}
		if !strings.Contains(resultErr.Error(), "timed out") {
			t.Errorf("expected a timeout error message, got: %v", resultErr)
		}
		if !strings.Contains(resultErr.Error(), "3 part/instance/derived-operator calls") {
			t.Errorf("expected the timeout error to report committed progress, got: %v", resultErr)
		}
	case <-time.After(EvalTimeout + 2*time.Second):
		t.Fatal("test itself timed out waiting for the evaluation timeout")
	}
}

func TestWaitWithTimeoutDiscardsStaleGeneration(t *testing.T) {
	e := NewEngine(scene.Settings{VoxelsPerUnit: 1})
	e.generation = 2

	ch := make(chan evalResult, 1)
	ch <- evalResult{scene: nil, errors: nil, err: nil}

	var progress atomic.Int64
	_, _, err := e.waitWithTimeout(ch, 1, &progress)
	if err == nil {
		t.Fatal("expected an error for a stale generation")
	}
	if !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected a superseded error, got: %v", err)
	}
}

func TestPreprocessSourceLeavesStringAndCommentContentAlone(t *testing.T) {
	got := preprocessSource("(box 0 0 0 1 1 1) ; a comment with :z and rotate-any inside\n\"a literal :keyword\"")
	if !strings.Contains(got, "a comment with :z and rotate-any inside") {
		t.Errorf("comment body was mangled: %q", got)
	}
	if !strings.Contains(got, "a literal :keyword") {
		t.Errorf("string literal body was mangled: %q", got)
	}
}
