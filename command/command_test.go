// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package command_test

import (
	"fmt"
	"reflect"
	"testing"

	"code.hybscloud.com/substrate/command"
	"code.hybscloud.com/substrate/kont"
)

// askInt is a minimal test capability: resumes with the int the test
// supplies, so command tests never need a real Shell.
type askInt struct {
	kont.Phantom[int]
	tag int
}

func effect(tag int, k func(int) command.Command[string]) command.Command[string] {
	return command.Effect[askInt, int, string](askInt{tag: tag}, k)
}

// askStream is a minimal streaming test capability: it satisfies
// command's unexported streamingOperation interface structurally, the
// same way capability.Sse/KV.ListPrefix/Time.Subscribe do, without
// command importing capability.
type askStream struct {
	kont.Phantom[int]
	tag int
}

func (askStream) IsStreamingOperation() {}

func streamEffect(tag int, k func(int) command.Command[string]) command.Command[string] {
	return command.Effect[askStream, int, string](askStream{tag: tag}, k)
}

func TestDoneProducesNoEvent(t *testing.T) {
	out := command.Run(command.Done[string]())
	if len(out.Events) != 0 || len(out.Pending) != 0 {
		t.Fatalf("Done outcome = %+v, want empty", out)
	}
}

func TestEventFeedsBackImmediately(t *testing.T) {
	out := command.Run(command.Event[string]("tick"))
	if len(out.Pending) != 0 {
		t.Fatalf("Event produced pending effects: %+v", out.Pending)
	}
	if len(out.Events) != 1 || out.Events[0] != "tick" {
		t.Fatalf("Events = %v, want [tick]", out.Events)
	}
}

func TestEffectSuspendsUntilResolved(t *testing.T) {
	c := effect(1, func(v int) command.Command[string] {
		return command.Event[string]("got")
	})
	out := command.Run(c)
	if len(out.Events) != 0 {
		t.Fatalf("expected no immediate events, got %v", out.Events)
	}
	if len(out.Pending) != 1 {
		t.Fatalf("expected exactly one pending effect, got %d", len(out.Pending))
	}
	resumed := command.Resume(out.Pending[0], 42)
	if len(resumed.Events) != 1 || resumed.Events[0] != "got" {
		t.Fatalf("Resume outcome = %+v, want Events=[got]", resumed)
	}
}

func TestThenSequencesAndDiscardsFirstValue(t *testing.T) {
	c := command.Then(
		command.Event[string]("ignored"),
		command.Event[string]("kept"),
	)
	out := command.Run(c)
	if len(out.Events) != 1 || out.Events[0] != "kept" {
		t.Fatalf("Then outcome = %+v, want Events=[kept]", out)
	}
}

func TestMapTransformsTerminalEvent(t *testing.T) {
	inner := command.Event[int](7)
	mapped := command.Map(inner, func(n int) string {
		return "n=7"
	})
	out := command.Run(mapped)
	if len(out.Events) != 1 || out.Events[0] != "n=7" {
		t.Fatalf("Map outcome = %+v, want Events=[n=7]", out)
	}
}

func TestMapPassesThroughNothing(t *testing.T) {
	mapped := command.Map(command.Done[int](), func(n int) string { return "unreachable" })
	out := command.Run(mapped)
	if len(out.Events) != 0 {
		t.Fatalf("Map(Done) outcome = %+v, want no events", out)
	}
}

func TestConcurrentEmitsAllEffectsInOrder(t *testing.T) {
	c := command.Concurrent([]command.Command[string]{
		effect(1, func(int) command.Command[string] { return command.Done[string]() }),
		effect(2, func(int) command.Command[string] { return command.Done[string]() }),
		effect(3, func(int) command.Command[string] { return command.Done[string]() }),
	})
	out := command.Run(c)
	if len(out.Pending) != 3 {
		t.Fatalf("expected 3 pending branches, got %d", len(out.Pending))
	}
	var tags []int
	for _, p := range out.Pending {
		tags = append(tags, p.Op.(askInt).tag)
	}
	if !reflect.DeepEqual(tags, []int{1, 2, 3}) {
		t.Fatalf("emission order = %v, want [1 2 3]", tags)
	}
}

func TestConcurrentBranchesResolveIndependentlyInReverseOrder(t *testing.T) {
	c := command.Concurrent([]command.Command[string]{
		effect(1, func(v int) command.Command[string] { return command.Event[string]("one") }),
		effect(2, func(v int) command.Command[string] { return command.Event[string]("two") }),
		effect(3, func(v int) command.Command[string] { return command.Event[string]("three") }),
	})
	out := command.Run(c)
	if len(out.Pending) != 3 {
		t.Fatalf("expected 3 pending branches, got %d", len(out.Pending))
	}

	var events []string
	for i := len(out.Pending) - 1; i >= 0; i-- {
		resumed := command.Resume(out.Pending[i], 0)
		events = append(events, resumed.Events...)
	}
	if !reflect.DeepEqual(events, []string{"three", "two", "one"}) {
		t.Fatalf("resolving in reverse order gave events %v, want [three two one]", events)
	}
}

func TestConcurrentFlattensNestedConcurrent(t *testing.T) {
	inner := command.Concurrent([]command.Command[string]{
		effect(2, func(int) command.Command[string] { return command.Done[string]() }),
	})
	outer := command.Concurrent([]command.Command[string]{
		effect(1, func(int) command.Command[string] { return command.Done[string]() }),
		inner,
	})
	out := command.Run(outer)
	if len(out.Pending) != 2 {
		t.Fatalf("expected nested Concurrent to flatten to 2 branches, got %d", len(out.Pending))
	}
}

// TestStreamingEffectReplaysSameCallbackRepeatedly proves a streaming
// Effect's Pending really is the same continuation invoked many times
// (spec.md §3), not a freshly performed Operation standing in for it each
// round: the very same Pending value, captured once from Run, answers two
// separate command.Resume calls, which a one-shot kont.Suspension could
// never do.
func TestStreamingEffectReplaysSameCallbackRepeatedly(t *testing.T) {
	calls := 0
	c := streamEffect(1, func(v int) command.Command[string] {
		calls++
		return command.Event[string](fmt.Sprintf("got-%d-%d", calls, v))
	})
	out := command.Run(c)
	if len(out.Pending) != 1 {
		t.Fatalf("expected exactly one pending streaming effect, got %d", len(out.Pending))
	}
	p := out.Pending[0]
	if p.Susp != nil || p.Replay == nil {
		t.Fatalf("streaming Pending = %+v, want Susp nil and Replay set", p)
	}
	if p.Op.(askStream).tag != 1 {
		t.Fatalf("Pending.Op = %+v, want the real askStream{tag: 1}", p.Op)
	}

	first := command.Resume(p, 10)
	if len(first.Events) != 1 || first.Events[0] != "got-1-10" {
		t.Fatalf("first replay = %+v, want Events=[got-1-10]", first)
	}
	if len(first.Pending) != 0 {
		t.Fatalf("replay introduced unexpected Pending: %+v", first.Pending)
	}

	second := command.Resume(p, 20)
	if len(second.Events) != 1 || second.Events[0] != "got-2-20" {
		t.Fatalf("second replay = %+v, want Events=[got-2-20]", second)
	}
}

func TestResumeDrivesChainedEffectsToCompletion(t *testing.T) {
	var step func(n int) command.Command[string]
	step = func(n int) command.Command[string] {
		if n == 0 {
			return command.Event[string]("done")
		}
		return effect(n, func(int) command.Command[string] { return step(n - 1) })
	}
	out := command.Run(step(2))
	for len(out.Pending) > 0 {
		out = command.Resume(out.Pending[0], 0)
	}
	if len(out.Events) != 1 || out.Events[0] != "done" {
		t.Fatalf("chained effects outcome = %+v, want Events=[done]", out)
	}
}
