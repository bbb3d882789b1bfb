package domain

import "testing"

func TestParseWalletTool(t *testing.T) {
	for _, name := range []string{"get_balance", "get_wallet", "send", "withdraw"} {
		tool, err := ParseWalletTool(name)
		if err != nil {
			t.Errorf("ParseWalletTool(%q): %v", name, err)
		}
		if string(tool) != name {
			t.Errorf("ParseWalletTool(%q) = %q", name, tool)
		}
	}
}

func TestParseWalletToolRejectsUnknownNames(t *testing.T) {
	for _, name := range []string{"", "delete_wallet", "GET_BALANCE", "send "} {
		if _, err := ParseWalletTool(name); err == nil {
			t.Errorf("expected error for %q", name)
		}
	}
}

func TestWalletToolDefinitionsCoverEveryTool(t *testing.T) {
	defs := WalletToolDefinitions()

	byName := make(map[string]ToolDefinition, len(defs))
	for _, def := range defs {
		if def.Type != "function" {
			t.Errorf("tool %s has type %q", def.Name, def.Type)
		}
		if def.Description == "" {
			t.Errorf("tool %s has no description", def.Name)
		}
		byName[def.Name] = def
	}

	for _, tool := range []WalletTool{ToolGetBalance, ToolGetWallet, ToolSend, ToolWithdraw} {
		def, ok := byName[string(tool)]
		if !ok {
			t.Errorf("missing definition for %s", tool)
			continue
		}
		if def.Parameters["type"] != "object" {
			t.Errorf("tool %s parameters are not an object schema", tool)
		}
	}

	sendRequired, _ := byName["send"].Parameters["required"].([]string)
	if len(sendRequired) != 2 {
		t.Errorf("send should require target and amount, got %v", sendRequired)
	}
}
