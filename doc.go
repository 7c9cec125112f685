/*
Package sensact is a model-based UI test-automation engine.

Tests are written as goals. A goal names a rule set; a rule set is an ordered
list of rules, each pairing conditions sensed on the application under test
with actions performed on it. The engine repeatedly fires the first rule
whose conditions hold until a rule ends the goal with done or fail. Actions
whose kind names another rule set run that rule set as a sub-goal.

Conditions and actions locate UI elements through GUI paths such as

	window:Notepad/menu item:File/menu item:Open...

resolved against any tree implementing ports.Element.

# Usage

	eng, err := sensact.New("./rulesets")
	if err != nil {
		log.Fatal(err)
	}

	goal := domain.NewRecord("open_file", "file", "notes.txt")
	snap, err := eng.Run(ctx, goal, app.Root())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(snap.Outcome)

Rule-set documents are YAML or JSON. With WithLoam the directory is read as
a Loam repository, which also accepts markdown files with frontmatter and
supports hot reload through Watch.

# Persistence

WithStore records a snapshot of every run (outcome, fired rules, final
variables). WithLocker serializes runs driving the same application across
processes; adapters for Redis, the filesystem and memory live under
pkg/adapters.
*/
package sensact
