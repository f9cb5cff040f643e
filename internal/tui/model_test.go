package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"tasnim.dev/aws-netdoc/internal/aws/inventory"
	"tasnim.dev/aws-netdoc/internal/aws/vpc"
	"tasnim.dev/aws-netdoc/internal/pipeline"
	"tasnim.dev/aws-netdoc/internal/report"
)

type fakeSource struct {
	blobs map[string]string
}

func (f *fakeSource) Fetch(ctx context.Context, q inventory.Query) (string, error) {
	blob, ok := f.blobs[q.String()]
	if !ok {
		return "", errors.New("offline")
	}
	return blob, nil
}

func newModel(t *testing.T, save Saver) Model {
	t.Helper()
	src := &fakeSource{blobs: map[string]string{
		inventory.DescribeVPC("vpc-1").String(): `{"Vpcs":[{"CidrBlock":"10.0.0.0/16","State":"available","Tags":[{"Key":"Name","Value":"prod"}]}]}`,
		inventory.DescribeSubnets().String():    `{"Subnets":[{"SubnetId":"subnet-a","VpcId":"vpc-1","AvailabilityZone":"us-east-1a"}]}`,
	}}
	p := pipeline.New(vpc.NewClient(src, nil), "vpc-1", pipeline.Options{})
	return NewModel(context.Background(), p, save, report.English, "us-east-1")
}

// drive feeds step results through Update until the pipeline reaches the
// terminal step, running each returned command synchronously.
func drive(t *testing.T, m Model) (Model, tea.Cmd) {
	t.Helper()
	cmd := m.fetchStep()
	for i := 0; i < 20 && !m.pipe.Done(); i++ {
		msg, ok := cmd().(stepMsg)
		if !ok {
			t.Fatalf("expected stepMsg at iteration %d", i)
		}
		next, c := m.Update(msg)
		m = next.(Model)
		cmd = c
	}
	if !m.pipe.Done() {
		t.Fatal("pipeline did not finish")
	}
	return m, cmd
}

func TestView_Loading(t *testing.T) {
	m := newModel(t, nil)

	view := m.View().Content
	if !strings.Contains(view, "Loading Network details") {
		t.Error("loading view should show the title")
	}
	if !strings.Contains(view, "vpc-1") {
		t.Error("loading view should show the vpc id")
	}
	if !strings.Contains(view, "○ Subnets") {
		t.Error("pending steps should be marked")
	}
	if !strings.Contains(view, "0/7") {
		t.Error("loading view should show the step counter")
	}
}

func TestUpdate_StepAdvancesChecklist(t *testing.T) {
	m := newModel(t, nil)

	next, cmd := m.Update(m.fetchStep()())
	m = next.(Model)

	if m.pipe.Cursor() != pipeline.StepSubnets {
		t.Fatalf("cursor = %v, want subnets", m.pipe.Cursor())
	}
	if cmd == nil {
		t.Fatal("expected a fetch command for the next step")
	}
	view := m.View().Content
	if !strings.Contains(view, "✓ VPC Basic Info") {
		t.Error("network step should be checked")
	}
	if !strings.Contains(view, "prod · vpc-1") {
		t.Error("header should show the network display name")
	}
}

func TestUpdate_FailedStepMarked(t *testing.T) {
	m := newModel(t, nil)
	m, _ = drive(t, m)

	view := m.View().Content
	if !strings.Contains(view, "✓ Subnets") {
		t.Error("subnets step should be checked")
	}
	if !strings.Contains(view, "✗ NAT Gateway") {
		t.Error("NAT step should be marked failed")
	}
	if !strings.Contains(view, "r refresh") {
		t.Error("finished view should offer refresh")
	}
}

func TestUpdate_StaleResultIgnored(t *testing.T) {
	m := newModel(t, nil)

	next, cmd := m.Update(stepMsg{res: pipeline.StepResult{Step: pipeline.StepRouteTables}})
	m = next.(Model)

	if cmd != nil {
		t.Error("stale result should not schedule work")
	}
	if m.pipe.Cursor() != pipeline.StepNetwork {
		t.Errorf("cursor moved to %v", m.pipe.Cursor())
	}
}

func TestUpdate_SavesOnCompletion(t *testing.T) {
	var saved *pipeline.Result
	m := newModel(t, func(res *pipeline.Result) (string, error) {
		saved = res
		return "/tmp/prod.md", nil
	})

	m, cmd := drive(t, m)
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	if !m.saving {
		t.Error("model should be saving")
	}
	next, _ := m.Update(cmd())
	m = next.(Model)

	if saved == nil || saved.Filename != "prod.md" {
		t.Fatalf("saver got %+v", saved)
	}
	if m.saving {
		t.Error("saving flag should clear")
	}
	if !strings.Contains(m.View().Content, "Report written to /tmp/prod.md") {
		t.Error("view should report the saved path")
	}
}

func TestUpdate_SaveError(t *testing.T) {
	m := newModel(t, func(res *pipeline.Result) (string, error) {
		return "", errors.New("disk full")
	})
	m, cmd := drive(t, m)
	next, _ := m.Update(cmd())
	m = next.(Model)

	if !strings.Contains(m.View().Content, "disk full") {
		t.Error("view should show the save error")
	}
}

func TestUpdate_RefreshOnlyWhenDone(t *testing.T) {
	m := newModel(t, nil)

	next, cmd := m.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	m = next.(Model)
	if cmd != nil {
		t.Error("refresh while busy should be ignored")
	}

	m, _ = drive(t, m)
	next, cmd = m.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("refresh should restart fetching")
	}
	if m.pipe.Done() || m.pipe.Cursor() != pipeline.StepNetwork {
		t.Error("pipeline should restart at the first step")
	}

	m, _ = drive(t, m)
	if !m.pipe.Result().Unchanged {
		t.Error("second run over identical data should be unchanged")
	}
	if !strings.Contains(m.View().Content, "No changes since the last report") {
		t.Error("view should say nothing changed")
	}
}

func TestUpdate_RefreshSingleStep(t *testing.T) {
	saves := 0
	m := newModel(t, func(res *pipeline.Result) (string, error) {
		saves++
		return "/tmp/prod.md", nil
	})
	m, cmd := drive(t, m)
	next, _ := m.Update(cmd())
	m = next.(Model)
	before := m.pipe.Result().Markdown

	// key 2 refetches subnets
	next, cmd = m.Update(tea.KeyPressMsg{Code: '2', Text: "2"})
	m = next.(Model)
	if cmd == nil || !m.refreshing {
		t.Fatal("step key should start a refresh")
	}
	if !strings.Contains(m.View().Content, "Subnets") || strings.Contains(m.View().Content, "✓ Subnets") {
		t.Error("refreshing step should show the spinner instead of its marker")
	}

	// a second key is ignored while the first is in flight
	if _, c := m.Update(tea.KeyPressMsg{Code: '3', Text: "3"}); c != nil {
		t.Error("refresh while refreshing should be ignored")
	}

	next, cmd = m.Update(m.refreshStep(pipeline.StepSubnets)())
	m = next.(Model)
	if m.refreshing {
		t.Error("refreshing flag should clear")
	}
	if m.pipe.Cursor() != pipeline.StepDone || !m.pipe.Done() {
		t.Error("refresh must not move the cursor")
	}
	if cmd == nil {
		t.Fatal("refreshed report should be saved again")
	}
	next, _ = m.Update(cmd())
	m = next.(Model)
	if saves != 2 {
		t.Errorf("saves = %d, want 2", saves)
	}
	if m.pipe.Result().Markdown != before {
		t.Error("refetching identical data should not change the report")
	}
}

func TestUpdate_RefreshStepIgnoredWhileBusy(t *testing.T) {
	m := newModel(t, nil)

	next, cmd := m.Update(tea.KeyPressMsg{Code: '1', Text: "1"})
	m = next.(Model)

	if cmd != nil || m.refreshing {
		t.Error("step refresh before completion should be ignored")
	}
}

func TestUpdate_Quit(t *testing.T) {
	m := newModel(t, nil)

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})

	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
