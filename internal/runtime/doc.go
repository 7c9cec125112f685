/*
Package runtime implements the goal-driven rule engine.

An Engine selects the rule set named by its goal, binds the goal parameters
and then repeatedly scans the rules in declared order. The first rule whose
conditions all hold fires; its actions run in order until one of them
terminates the goal (done, fail), delegates to a sub-goal handled by a fresh
Engine, or fails.

A rule that is not fire-always does not fire on consecutive ticks: while it
stays the first satisfied rule the tick is idle. A tick where no rule holds
clears that memory.

Without WithMaxTicks, WithTimeout or a cancellable context, Run never returns
when no rule can make progress.
*/
package runtime
