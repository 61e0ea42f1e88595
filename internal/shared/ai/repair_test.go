package ai

import (
	"encoding/json"
	"testing"
)

func TestCleanResponseText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading whitespace", "  \n{\"a\":1}  ", `{"a":1}`},
		{"fence without close", "```json\n{\"a\":1}", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanResponseText(tt.input); got != tt.want {
				t.Errorf("CleanResponseText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRepairJSONTruncated(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing closing braces", `{"modules":[{"name":"Core","tasks":[{"name":"API"}`},
		{"open string literal", `{"modules":[{"name":"Core","description":"algo sin cerr`},
		{"missing bracket only", `{"modules":[{"name":"Core"}`},
		{"cut after numeric value", `{"modules": [{"name":"A","tasks":[{"name":"T","hoursExpected":3`},
		{"brackets inside strings ignored", `{"modules":[{"name":"corchete ] y llave { adentro","tasks":[{"name":"T"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repaired := RepairJSON(tt.input)
			var out map[string]interface{}
			if err := json.Unmarshal([]byte(repaired), &out); err != nil {
				t.Errorf("repaired JSON still invalid: %v\n%s", err, repaired)
			}
		})
	}
}

func TestRepairJSONClosesInterleavedNesting(t *testing.T) {
	// 对象嵌在数组里被截断时，闭合符必须交错（}]}]}），
	// 成批追加 ]]}} 会闭合在错误的层级
	input := `{"modules": [{"name":"A","tasks":[{"name":"T","hoursExpected":3`
	repaired := RepairJSON(input)

	var out struct {
		Modules []struct {
			Name  string `json:"name"`
			Tasks []struct {
				Name          string  `json:"name"`
				HoursExpected float64 `json:"hoursExpected"`
			} `json:"tasks"`
		} `json:"modules"`
	}
	if err := json.Unmarshal([]byte(repaired), &out); err != nil {
		t.Fatalf("repaired JSON invalid: %v\n%s", err, repaired)
	}
	if len(out.Modules) != 1 || len(out.Modules[0].Tasks) != 1 {
		t.Fatalf("unexpected structure: %+v", out)
	}
	if out.Modules[0].Tasks[0].HoursExpected != 3 {
		t.Errorf("hoursExpected = %v, want 3", out.Modules[0].Tasks[0].HoursExpected)
	}
}

func TestRepairJSONLeavesValidInputAlone(t *testing.T) {
	input := `{"modules":[{"name":"Core","tasks":[]}],"baseHours":10}`
	if got := RepairJSON(input); got != input {
		t.Errorf("valid JSON was modified: %q", got)
	}
}

func TestRepairJSONCannotFixGarbage(t *testing.T) {
	// 修复只补括号，不重写内容：语法错误的输入依然无法解析，
	// 调用方必须对修复产物做结构校验
	repaired := RepairJSON(`{"modules": not json at all`)
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(repaired), &out); err == nil {
		t.Error("expected repaired garbage to remain unparseable")
	}
}
