package memory_test

import (
	"testing"

	"github.com/aretw0/sensact/pkg/adapters/memory"
	contract "github.com/aretw0/sensact/pkg/ports/tests"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	data := map[string]string{
		"notepad":  "rulesets: []",
		"explorer": "goal: open",
	}

	bytesData := make(map[string][]byte)
	for k, v := range data {
		bytesData[k] = []byte(v)
	}

	contract.RuleLoaderContractTest(t, memory.NewLoader(data), bytesData)
}
