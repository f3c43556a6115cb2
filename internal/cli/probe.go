package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"xiaoliu/internal/entities"

	"github.com/spf13/cobra"
)

const probeTimeout = 10 * time.Second

var probeURLs []string

func init() {
	probeCmd.Flags().StringSliceVar(&probeURLs, "url", []string{"http://localhost:8000"}, "base URL to probe; repeat to try several in order")
	rootCmd.AddCommand(probeCmd)
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check a running service: health, info, features and the canned chat replies",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := &Prober{Client: &http.Client{Timeout: probeTimeout}, Out: cmd.OutOrStdout()}
		return p.Run(cmd.Context(), probeURLs)
	},
}

// chatScenario is a message with a phrase its reply must contain.
type chatScenario struct {
	Message string
	Expect  string
}

var chatScenarios = []chatScenario{
	{"你好小柳", "小柳"},
	{"小柳状态", "运行正常"},
	{"生成文档", "文档生成"},
	{"分析代码", "代码分析"},
	{"配色", "配色"},
	{"并行开发", "并行开发"},
}

var ErrNoHealthyTarget = errors.New("no healthy service found")

type Prober struct {
	Client *http.Client
	Out    io.Writer
}

// Run picks the first base URL whose /health answers healthy and runs every
// check against it. The returned error reports how many checks failed.
func (p *Prober) Run(ctx context.Context, urls []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var base string
	for _, u := range urls {
		u = strings.TrimRight(u, "/")
		if err := p.checkHealth(ctx, u); err != nil {
			p.report(false, "health %s: %v", u, err)
			continue
		}
		p.report(true, "health %s", u)
		base = u
		break
	}
	if base == "" {
		return ErrNoHealthyTarget
	}

	failed := 0
	check := func(ok bool, format string, args ...any) {
		if !ok {
			failed++
		}
		p.report(ok, format, args...)
	}

	var info entities.ServiceInfo
	if err := p.getJSON(ctx, base+"/", &info); err != nil {
		check(false, "info: %v", err)
	} else {
		check(info.Status == "running", "info: %s (%s)", info.Message, info.Version)
	}

	var features struct {
		Features []entities.Feature `json:"features"`
	}
	if err := p.getJSON(ctx, base+"/features", &features); err != nil {
		check(false, "features: %v", err)
	} else {
		check(len(features.Features) > 0, "features: %d listed", len(features.Features))
	}

	for _, s := range chatScenarios {
		reply, err := p.chat(ctx, base, s.Message)
		if err != nil {
			check(false, "chat %q: %v", s.Message, err)
			continue
		}
		check(strings.Contains(reply, s.Expect), "chat %q -> %s", s.Message, reply)
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

func (p *Prober) report(ok bool, format string, args ...any) {
	mark := "✓"
	if !ok {
		mark = "✗"
	}
	fmt.Fprintf(p.Out, "%s %s\n", mark, fmt.Sprintf(format, args...))
}

func (p *Prober) checkHealth(ctx context.Context, base string) error {
	var health entities.HealthStatus
	if err := p.getJSON(ctx, base+"/health", &health); err != nil {
		return err
	}
	if health.Status != "healthy" {
		return fmt.Errorf("status %q", health.Status)
	}
	return nil
}

func (p *Prober) chat(ctx context.Context, base, message string) (string, error) {
	body, err := json.Marshal(entities.ChatRequest{Message: message, UserID: "probe"})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp entities.ChatResponse
	if err := p.do(req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

func (p *Prober) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return p.do(req, out)
}

func (p *Prober) do(req *http.Request, out any) error {
	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
