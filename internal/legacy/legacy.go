// Package legacy talks to the legacy employee service: a zipped token
// manifest at the endpoint root and one JSON record per token below it.
package legacy

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"

	"indengsvc/backend/internal/entity"
	"indengsvc/backend/internal/pkg/config"
	"indengsvc/backend/internal/pkg/errs"
)

type Client struct {
	endpoint      string
	authorization string
	manifestName  string
	tempDir       string
	timeout       time.Duration
	http          *http.Client
}

func New(cfg config.Legacy) *Client {
	manifest := cfg.ManifestName
	if manifest == "" {
		manifest = "tokens.xlsx"
	}

	tr := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		endpoint:      strings.TrimRight(cfg.Endpoint, "/"),
		authorization: cfg.Authorization,
		manifestName:  manifest,
		tempDir:       cfg.TempDir,
		timeout:       cfg.Timeout,
		http:          &http.Client{Transport: tr},
	}
}

// FetchEmployee exchanges one token for its employee record.
func (c *Client) FetchEmployee(ctx context.Context, token string) (entity.Employee, error) {
	if c.endpoint == "" {
		return entity.Employee{}, endpointMissing()
	}

	target := c.endpoint + "/" + url.PathEscape(token)

	var employee entity.Employee
	err := c.get(ctx, target, func(body io.Reader) error {
		return decodeEmployee(body, &employee)
	})
	if err != nil {
		return entity.Employee{}, err
	}

	return employee, nil
}

// get performs one authenticated GET bounded by the client timeout and hands
// a 200 body to read. Any other status is an UpstreamError.
func (c *Client) get(ctx context.Context, target string, read func(body io.Reader) error) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return errors.Wrap(err, "building legacy request")
	}
	req.Header.Set("Authorization", c.authorization)

	resp, err := c.http.Do(req)
	if err != nil {
		return c.transportError(ctx, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &errs.UpstreamError{URL: target, StatusCode: resp.StatusCode}
	}

	if err = read(resp.Body); err != nil {
		return c.transportError(ctx, target, err)
	}
	return nil
}

func (c *Client) transportError(ctx context.Context, target string, err error) error {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &errs.UpstreamTimeoutError{URL: target, Err: err}
	}
	return errors.Wrapf(err, "requesting %s", target)
}

func endpointMissing() error {
	return &errs.ConfigurationError{Setting: config.Prefix + "_LEGACY_ENDPOINT"}
}

// decodeEmployee accepts birth as a bare date or as a timestamp whose first
// ten characters are the date.
func decodeEmployee(r io.Reader, employee *entity.Employee) error {
	type alias entity.Employee
	var raw struct {
		alias
		Birth *string `json:"birth"`
	}

	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return errors.Wrap(err, "decoding employee record")
	}

	*employee = entity.Employee(raw.alias)
	employee.Birth = nil

	if raw.Birth != nil && *raw.Birth != "" {
		s := *raw.Birth
		if len(s) > 10 {
			s = s[:10]
		}
		d, err := date.ParseDate(s)
		if err != nil {
			return errors.Wrapf(err, "decoding employee %d birth", employee.ID)
		}
		employee.Birth = &d
	}

	return nil
}
