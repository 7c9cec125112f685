/*
Package dsl builds rule-set libraries in Go instead of YAML files.

The builder renders ordinary rule-set documents, so everything built here goes
through the same compiler, diagnostics and engine as documents on disk.

Example usage:

	b := dsl.New().Goal("close_dialog")

	b.RuleSet("close_dialog").
		Rule("closed").When("absent", "path", "dialog:Open").Done().
		Rule("cancel").When("exists", "path", "dialog:Open").
		Do("click", "path", "dialog:Open/push button:Cancel")

	loader, err := b.Build()
	// ... pass loader to sensact.New("", sensact.WithLoader(loader))
*/
package dsl
