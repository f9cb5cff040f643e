package theme

import (
	"image/color"
	"strings"
	"testing"
)

func TestChecklistBoxStyle_HasBorder(t *testing.T) {
	rendered := ChecklistBoxStyle.Render("test")
	// Rounded border uses ╭ at top-left
	if !strings.ContainsRune(rendered, '╭') {
		t.Error("expected ChecklistBoxStyle to use rounded border")
	}
}

func TestStatusColor(t *testing.T) {
	tests := []struct {
		status string
		want   color.Color
	}{
		{"available", Success},
		{"Attached", Success},
		{"blackhole", Error},
		{"deleted", Error},
		{"pending", Warning},
		{"deleting", Warning},
		{"something-random", Muted},
		{"", Muted},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := StatusColor(tt.status); got != tt.want {
				t.Errorf("%q: got %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestRenderStatus_ContainsBullet(t *testing.T) {
	r := RenderStatus("available")
	if !strings.ContainsRune(r, '●') {
		t.Error("RenderStatus should contain bullet ●")
	}
	if !strings.Contains(r, "available") {
		t.Error("RenderStatus should contain the status text")
	}
}
