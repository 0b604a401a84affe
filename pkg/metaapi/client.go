package metaapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dushixiang/propdesk/pkg/objective"
	"github.com/dushixiang/propdesk/pkg/restclient"
	"github.com/tidwall/gjson"
)

var ErrAccountNotFound = errors.New("metaapi: account not found")

// AccountSummary MetaStats 返回的账户概况
type AccountSummary struct {
	Balance  float64 `json:"balance"`
	Equity   float64 `json:"equity"`
	Deposits float64 `json:"deposits"`
	Trades   int     `json:"trades"`
}

// Client MetaStats 接口客户端
type Client struct {
	rest *restclient.Client
}

func New(baseURL, token string, opts restclient.Options) *Client {
	if opts.Headers == nil {
		opts.Headers = map[string]string{}
	}
	opts.Headers["auth-token"] = token
	return &Client{rest: restclient.New(baseURL, opts)}
}

// GetMetrics 拉取账户交易指标
func (c *Client) GetMetrics(ctx context.Context, accountID string) (*objective.Metrics, *AccountSummary, error) {
	path := fmt.Sprintf("/users/current/accounts/%s/metrics", url.PathEscape(accountID))
	query := url.Values{"includeOpenPositions": {"true"}}

	var raw []byte
	if _, err := c.rest.Get(ctx, path, query, &raw); err != nil {
		if restclient.IsStatus(err, http.StatusNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
		}
		return nil, nil, fmt.Errorf("metaapi: get metrics for %s: %w", accountID, err)
	}

	metrics, err := objective.ParseMetrics(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("metaapi: parse metrics for %s: %w", accountID, err)
	}

	root := gjson.ParseBytes(raw)
	if nested := root.Get("metrics"); nested.IsObject() {
		root = nested
	}
	summary := &AccountSummary{
		Balance:  root.Get("balance").Float(),
		Equity:   root.Get("equity").Float(),
		Deposits: root.Get("deposits").Float(),
		Trades:   int(root.Get("trades").Int()),
	}
	return metrics, summary, nil
}
