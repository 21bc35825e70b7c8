/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package rootpak

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mirkobrombin/rootpak/pkg/logger"
	"github.com/mirkobrombin/rootpak/pkg/tools"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultAptCacheURL is where apt-cacher-ng listens by default.
	DefaultAptCacheURL = "http://127.0.0.1:3142"

	// aptCacheMarker is looked for, case-sensitively, in the body served
	// by an apt proxy.
	aptCacheMarker = "APT"

	aptCachePrompt   = "Unable to guess APT-Cache please enter URL (default port is 3142): "
	maxProbeBodySize = 1 << 20
)

var errMissingScheme = errors.New("missing URL scheme")

// ProxyLocator finds a working apt proxy starting from a candidate URL.
type ProxyLocator interface {
	Locate(ctx context.Context, candidate string) (string, bool)
}

// AptCacheLocator probes a candidate apt proxy and falls back to asking
// the operator for another URL. Failing to find a proxy is never an
// error, the container just fetches packages without it.
type AptCacheLocator struct {
	Client *http.Client

	// Prompter is asked for a replacement URL after a failed probe, nil
	// disables prompting.
	Prompter tools.Prompter

	// MaxPrompts bounds the number of questions asked by a single
	// Locate call. Negative means no limit, zero never prompts.
	MaxPrompts int
}

// NewAptCacheLocator returns a locator with a short probe timeout.
func NewAptCacheLocator(prompter tools.Prompter, maxPrompts int) *AptCacheLocator {
	return &AptCacheLocator{
		Client:     &http.Client{Timeout: 5 * time.Second},
		Prompter:   prompter,
		MaxPrompts: maxPrompts,
	}
}

// Locate returns the first candidate recognized as an apt proxy. A
// candidate without a scheme is retried once with "http://" prepended
// and the normalized URL is returned. When the operator answers with
// an empty line, or the prompt budget is exhausted, found is false.
func (l *AptCacheLocator) Locate(ctx context.Context, candidate string) (proxy string, found bool) {
	prompts := 0
	for {
		if proxy, found = l.probe(ctx, candidate); found {
			logger.WithFields(logrus.Fields{"url": proxy}).Debug("apt cache found")
			return
		}

		if l.Prompter == nil || (l.MaxPrompts >= 0 && prompts >= l.MaxPrompts) {
			return "", false
		}
		prompts++

		answer, err := l.Prompter.Prompt(aptCachePrompt)
		if err != nil || answer == "" {
			return "", false
		}
		candidate = answer
	}
}

func (l *AptCacheLocator) probe(ctx context.Context, candidate string) (string, bool) {
	ok, err := l.get(ctx, candidate)
	if errors.Is(err, errMissingScheme) {
		candidate = "http://" + candidate
		ok, err = l.get(ctx, candidate)
	}
	if err != nil {
		logger.Debugf("apt cache probe of %q failed: %v", candidate, err)
		return "", false
	}
	if !ok {
		logger.Debugf("%s does not look like an apt cache", candidate)
	}
	return candidate, ok
}

// get fetches candidate and reports whether the body carries the apt
// proxy marker. The status code is not looked at, apt-cacher-ng answers
// its index page with 406.
func (l *AptCacheLocator) get(ctx context.Context, candidate string) (bool, error) {
	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" {
		return false, fmt.Errorf("%w: %q", errMissingScheme, candidate)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false, err
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBodySize))
	if err != nil {
		return false, err
	}

	return bytes.Contains(body, []byte(aptCacheMarker)), nil
}
