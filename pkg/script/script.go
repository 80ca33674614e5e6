// Package script provides a zygomys Lisp front end over pkg/kernel and
// pkg/scene: solids are plain expressions (box, union, translate, ...)
// and a script registers parts and instances into a shared Scene.
package script

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chazu/vxcsg/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalTimeout is the hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

// evalResult is the internal type used to pass evaluation results through
// channels.
type evalResult struct {
	scene  *scene.Scene
	errors []EvalError
	err    error
}

// Engine wraps the zygomys interpreter for voxel-script evaluation. It is
// safe for concurrent use; each call to Evaluate creates a fresh sandboxed
// environment and a fresh Scene for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	// Settings seeds the Scene created by every Evaluate call.
	Settings scene.Settings
}

// NewEngine creates a new Engine with the given scene settings.
func NewEngine(settings scene.Settings) *Engine {
	return &Engine{Settings: settings}
}

// Evaluate takes Lisp source code and produces a populated Scene.
//
// Return semantics:
//   - On success: scene + nil errors + nil error
//   - On parse/eval failure: nil scene + eval errors + nil error
//   - On fatal failure (timeout, panic): nil + nil + error
func (e *Engine) Evaluate(source string) (*scene.Scene, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)
	var progress atomic.Int64

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		sc, evalErrs, err := e.evaluate(source, &progress)
		ch <- evalResult{scene: sc, errors: evalErrs, err: err}
	}()

	return e.waitWithTimeout(ch, gen, &progress)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
// progress is shared with registerBuiltins, which advances it once per
// committed defpart/instance/weld/bridge/strut call, so a caller stuck
// waiting in waitWithTimeout can report how far a runaway script got.
func (e *Engine) evaluate(source string, progress *atomic.Int64) (*scene.Scene, []EvalError, error) {
	sc := scene.New(e.Settings)

	if strings.TrimSpace(source) == "" {
		return sc, nil, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, sc, progress)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}

	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	return sc, nil, nil
}

// waitWithTimeout waits for a result from ch, but returns a timeout error if
// the evaluation exceeds EvalTimeout. It uses a generation counter to
// discard stale results from a previous, since-superseded evaluation, and
// reports how many defpart/instance/weld/bridge/strut calls progress had already counted at
// the deadline, so a caller can tell a script that timed out after doing
// nothing from one that timed out deep into a long build.
//
// On timeout the goroutine running the evaluation may still be executing;
// the generation check ensures its eventual result is discarded.
func (e *Engine) waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	progress *atomic.Int64,
) (*scene.Scene, []EvalError, error) {
	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		e.mu.Lock()
		current := e.generation
		e.mu.Unlock()

		if gen != current {
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}
		return res.scene, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf(
			"evaluation timed out after %s with %d part/instance/derived-operator calls committed",
			EvalTimeout, progress.Load(),
		)
	}
}

var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError
// values, extracting a line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
