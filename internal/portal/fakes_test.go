package portal

import (
	"context"
	"errors"
	"sync"
	"time"

	"portal-agent/internal/config"
	"portal-agent/internal/ports"
)

// fakeNode is a synthetic page-tree node. Relative lookups resolve
// through the children map keyed by the exact relative XPath the
// resolver issues.
type fakeNode struct {
	tag      string
	children map[string]*fakeNode
	value    string

	visible    bool
	clickErr   error
	jsClickErr error
	typeErr    error
	typeNoop   bool // TypeText reports success but the widget swallows it
	setErr     error

	clicks     int
	jsClicks   int
	hovers     int
	dispatches int
	forces     int
	scrolls    int
	focuses    int
	clears     int

	onHover func()
}

func (n *fakeNode) Tag(context.Context) string { return n.tag }

func (n *fakeNode) First(_ context.Context, relPath string) (ports.ElementNode, bool) {
	child, ok := n.children[relPath]
	if !ok || child == nil {
		return nil, false
	}

	return child, true
}

func (n *fakeNode) Click(context.Context, time.Duration) error {
	n.clicks++

	return n.clickErr
}

func (n *fakeNode) JSClick(context.Context) error {
	n.jsClicks++

	return n.jsClickErr
}

func (n *fakeNode) Focus(context.Context) error {
	n.focuses++

	return nil
}

func (n *fakeNode) Clear(context.Context) error {
	n.clears++
	n.value = ""

	return nil
}

func (n *fakeNode) TypeText(_ context.Context, text string) error {
	if n.typeErr != nil {
		return n.typeErr
	}

	if !n.typeNoop {
		n.value = text
	}

	return nil
}

func (n *fakeNode) SetValue(_ context.Context, value string) error {
	if n.setErr != nil {
		return n.setErr
	}

	n.value = value

	return nil
}

func (n *fakeNode) Value(context.Context) string { return n.value }

func (n *fakeNode) Hover(context.Context) error {
	n.hovers++
	if n.onHover != nil {
		n.onHover()
	}

	return nil
}

func (n *fakeNode) DispatchHoverEvents(context.Context) error {
	n.dispatches++

	return nil
}

func (n *fakeNode) ForceVisibleStyles(context.Context) error {
	n.forces++

	return nil
}

func (n *fakeNode) ScrollIntoView(context.Context) error {
	n.scrolls++

	return nil
}

func (n *fakeNode) Visible(context.Context) bool { return n.visible }

// fakeSession implements ports.BrowserSession over a map of absolute
// XPaths. It tracks session lifecycle so tests can assert the
// at-most-one-open-session invariant.
type fakeSession struct {
	mu    sync.Mutex
	nodes map[string]*fakeNode

	launchErr error
	navErr    error
	freshErr  error

	open        bool
	launches    int
	closes      int
	navigations []string
	freshOpens  []string
	waits       []time.Duration

	onOpenFresh func(s *fakeSession)
}

func newFakeSession() *fakeSession {
	return &fakeSession{nodes: make(map[string]*fakeNode)}
}

func (s *fakeSession) Launch(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.launchErr != nil {
		return s.launchErr
	}

	if s.open {
		return errors.New("second session opened")
	}

	s.launches++
	s.open = true

	return nil
}

func (s *fakeSession) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closes++
	s.open = false

	return nil
}

func (s *fakeSession) Navigate(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.navigations = append(s.navigations, url)

	return s.navErr
}

func (s *fakeSession) OpenFresh(_ context.Context, url string) error {
	s.mu.Lock()
	hook := s.onOpenFresh
	s.freshOpens = append(s.freshOpens, url)
	err := s.freshErr
	s.mu.Unlock()

	if hook != nil {
		hook(s)
	}

	return err
}

func (s *fakeSession) Find(_ context.Context, path string, wait time.Duration) (ports.ElementNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.waits = append(s.waits, wait)

	node, ok := s.nodes[path]
	if !ok || node == nil {
		return nil, false
	}

	return node, true
}

func (s *fakeSession) WaitVisible(_ context.Context, path string, wait time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.waits = append(s.waits, wait)

	node, ok := s.nodes[path]

	return ok && node != nil && node.visible
}

func (s *fakeSession) IsReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.open
}

// fakeProbe flips to reachable after a fixed number of calls.
type fakeProbe struct {
	mu        sync.Mutex
	calls     int
	flipAfter int // 0 means never reachable
}

func (p *fakeProbe) Reachable(context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++

	return p.flipAfter > 0 && p.calls >= p.flipAfter
}

func testConfig() *config.Config {
	return &config.Config{
		AppConfig: &config.AppConfig{LogLevel: "debug"},
		PortalConfig: &config.PortalConfig{
			URL:               "http://portal.test",
			Username:          "user",
			Password:          "secret",
			FormWaitTimeout:   40 * time.Millisecond,
			QuickProbeTimeout: 20 * time.Millisecond,
			RevealBudget:      60 * time.Millisecond,
			LogoutRetries:     2,
			RecoveryCeiling:   300 * time.Millisecond,
			RecoveryInterval:  10 * time.Millisecond,
		},
		NetworkConfig: &config.NetworkConfig{
			TargetSSID:     "corp-wifi",
			TestURL:        "http://egress.test",
			RequestTimeout: 100 * time.Millisecond,
			CheckInterval:  20 * time.Millisecond,
		},
		BrowserConfig: &config.BrowserConfig{
			FindTimeout:  10 * time.Millisecond,
			ClickTimeout: 20 * time.Millisecond,
			PageTimeout:  100 * time.Millisecond,
		},
	}
}

// loginFormNodes installs anchors whose labels sit next to real
// inputs, the shape the resolver sees on the actual portal.
func loginFormNodes(s *fakeSession) (username, password *fakeNode) {
	username = &fakeNode{tag: "input"}
	password = &fakeNode{tag: "input"}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes[usernameField.Primary] = &fakeNode{
		tag:      "label",
		children: map[string]*fakeNode{".//input": username},
	}
	s.nodes[passwordField.Primary] = &fakeNode{
		tag:      "label",
		children: map[string]*fakeNode{".//input": password},
	}

	return username, password
}

func submitNode(s *fakeSession) *fakeNode {
	submit := &fakeNode{tag: "input", visible: true}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes[submitButton.Primary] = submit

	return submit
}
