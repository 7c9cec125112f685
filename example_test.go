package sensact_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/sensact"
	"github.com/aretw0/sensact/pkg/adapters/memory"
	"github.com/aretw0/sensact/pkg/domain"
)

func Example() {
	loader := memory.NewLoader(map[string]string{
		"notepad": `
id: close_dialog
rules:
  - id: closed
    when: [ { absent: "dialog:Open" } ]
    do: [ done ]
  - id: press
    when: [ { exists: "dialog:Open" } ]
    do: [ { click: { path: "dialog:Open/push button:Cancel" } } ]
`,
	})

	app, err := memory.LoadTree([]byte(`
role: window
name: Notepad
children:
  - id: dlg
    role: dialog
    name: Open
    children:
      - { role: push button, name: Cancel, on_click: { hide: [dlg] } }
`))
	if err != nil {
		log.Fatal(err)
	}

	eng, err := sensact.New("", sensact.WithLoader(loader))
	if err != nil {
		log.Fatal(err)
	}

	snap, err := eng.Run(context.Background(), domain.NewRecord("close_dialog"), app.Root)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(snap.Outcome)
	for _, f := range snap.Fired {
		fmt.Println(f.Tick, f.RuleID)
	}
	// Output:
	// done
	// 1 press
	// 2 closed
}
