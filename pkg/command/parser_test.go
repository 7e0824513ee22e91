package command

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line   string
		kind   Kind
		name   string
		phone  string
		remark string
		key    string
		err    error
	}{
		{"ADD 张三 13800000001 工作电话", Add, "张三", "13800000001", "工作电话", "", nil},
		{"add Zhang 13800000001", Add, "Zhang", "13800000001", "", "", nil},
		{"ADD Zhang 13800000001 home  and   work", Add, "Zhang", "13800000001", "home and work", "", nil},
		{"  DEL 13800000001  ", Del, "", "", "", "13800000001", nil},
		{"find_name 张", FindName, "", "", "", "张", nil},
		{"FIND_PHONE 138", FindPhone, "", "", "", "138", nil},
		{"LIST", List, "", "", "", "", nil},
		{"stat", Stat, "", "", "", "", nil},
		{"SAVE", Save, "", "", "", "", nil},
		{"HELP", Help, "", "", "", "", nil},
		{"Exit", Exit, "", "", "", "", nil},
		{"ADD Zhang", 0, "", "", "", "", ErrUsage},
		{"DEL", 0, "", "", "", "", ErrUsage},
		{"DEL a b", 0, "", "", "", "", ErrUsage},
		{"FIND_NAME", 0, "", "", "", "", ErrUsage},
		{"SELECT * FROM users", 0, "", "", "", "", ErrUnknown},
		{"   ", 0, "", "", "", "", ErrEmpty},
		{"", 0, "", "", "", "", ErrEmpty},
	}
	for _, tt := range tests {
		cmd, err := Parse(tt.line)
		if tt.err != nil {
			if !errors.Is(err, tt.err) {
				t.Errorf("Parse(%q): expected %v, got %v", tt.line, tt.err, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.line, err)
			continue
		}
		if cmd.Kind != tt.kind {
			t.Errorf("Parse(%q): kind=%v, want %v", tt.line, cmd.Kind, tt.kind)
		}
		if cmd.Name != tt.name || cmd.Phone != tt.phone || cmd.Remark != tt.remark || cmd.Key != tt.key {
			t.Errorf("Parse(%q): got %+v", tt.line, cmd)
		}
	}
}

func TestUsage(t *testing.T) {
	if Usage(Add) == "" || Usage(Del) == "" {
		t.Fatal("expected usage text for ADD and DEL")
	}
	if Usage(List) != "" {
		t.Fatalf("expected no usage for LIST, got %q", Usage(List))
	}
	if Add.String() != "ADD" || Kind(99).String() != "UNKNOWN" {
		t.Fatalf("unexpected Kind strings: %s %s", Add, Kind(99))
	}
}
