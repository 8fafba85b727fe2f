package wifi

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

type fakeResult struct {
	out string
	err error
}

// fakeRunner answers commands by their joined command line and records every call.
type fakeRunner struct {
	mu        sync.Mutex
	results   map[string]fakeResult
	calls     []string
	started   []*fakeProcess
	startErr  map[string]error
	exitEarly map[string]bool
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		results:   map[string]fakeResult{},
		startErr:  map[string]error{},
		exitEarly: map[string]bool{},
	}
}

func (r *fakeRunner) on(cmdline, out string, err error) {
	r.results[cmdline] = fakeResult{out: out, err: err}
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, line)
	if res, ok := r.results[line]; ok {
		return res.out, res.err
	}
	// systemctl is-active defaults to "inactive"
	if strings.HasPrefix(line, "systemctl is-active") {
		return "", errors.New("exit status 3")
	}
	return "", nil
}

func (r *fakeRunner) Start(name string, args ...string) (Process, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "start "+line)
	if err := r.startErr[name]; err != nil {
		return nil, err
	}
	p := &fakeProcess{name: name, exited: r.exitEarly[name]}
	r.started = append(r.started, p)
	return p, nil
}

func (r *fakeRunner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *fakeRunner) called(prefix string) bool {
	for _, c := range r.Calls() {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

type fakeProcess struct {
	mu     sync.Mutex
	name   string
	exited bool
	stops  int
}

func (p *fakeProcess) Exited() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exited
}

func (p *fakeProcess) Stop(time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.exited {
		p.stops++
	}
	p.exited = true
	return nil
}

func (p *fakeProcess) Stderr() string {
	return "nl80211: could not configure driver mode"
}
