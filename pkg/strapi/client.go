package strapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dushixiang/propdesk/pkg/objective"
	"github.com/dushixiang/propdesk/pkg/restclient"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

const defaultPageSize = 50

var ErrChallengeNotFound = errors.New("strapi: challenge not found")

// Challenge CMS 中配置的挑战
type Challenge struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Phase          string          `json:"phase"`
	Price          float64         `json:"price"`
	InitialBalance float64         `json:"initial_balance"`
	Rules          objective.Rules `json:"rules"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type Client struct {
	rest       *restclient.Client
	collection string
	pageSize   int
}

// New collection 为空时使用 /api/challenges
func New(baseURL, token, collection string, opts restclient.Options) *Client {
	if opts.Headers == nil {
		opts.Headers = map[string]string{}
	}
	if token != "" {
		opts.Headers["Authorization"] = "Bearer " + token
	}
	if collection == "" {
		collection = "/api/challenges"
	}
	return &Client{
		rest:       restclient.New(baseURL, opts),
		collection: collection,
		pageSize:   defaultPageSize,
	}
}

// ListChallenges 逐页读取全部挑战
func (c *Client) ListChallenges(ctx context.Context) ([]Challenge, error) {
	var challenges []Challenge
	for page := 1; ; page++ {
		query := url.Values{
			"pagination[page]":     {strconv.Itoa(page)},
			"pagination[pageSize]": {strconv.Itoa(c.pageSize)},
		}
		var raw []byte
		if _, err := c.rest.Get(ctx, c.collection, query, &raw); err != nil {
			return nil, fmt.Errorf("strapi: list challenges page %d: %w", page, err)
		}
		if !gjson.ValidBytes(raw) {
			return nil, fmt.Errorf("strapi: list challenges page %d: invalid JSON", page)
		}

		root := gjson.ParseBytes(raw)
		data := root.Get("data").Array()
		for _, item := range data {
			ch, err := decode(item)
			if err != nil {
				return nil, err
			}
			challenges = append(challenges, ch)
		}

		pageCount := int(root.Get("meta.pagination.pageCount").Int())
		if page >= pageCount || len(data) == 0 {
			break
		}
	}
	return challenges, nil
}

// GetChallenge 按 id 读取单个挑战
func (c *Client) GetChallenge(ctx context.Context, id int) (*Challenge, error) {
	var raw []byte
	path := fmt.Sprintf("%s/%d", c.collection, id)
	if _, err := c.rest.Get(ctx, path, nil, &raw); err != nil {
		if restclient.IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrChallengeNotFound, id)
		}
		return nil, fmt.Errorf("strapi: get challenge %d: %w", id, err)
	}
	data := gjson.GetBytes(raw, "data")
	if !data.IsObject() {
		return nil, fmt.Errorf("%w: %d", ErrChallengeNotFound, id)
	}
	ch, err := decode(data)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func decode(item gjson.Result) (Challenge, error) {
	attrs := item.Get("attributes")
	if !attrs.IsObject() {
		// Strapi v5 直接平铺字段
		attrs = item
	}

	rules, err := objective.ParseRules([]byte(attrs.Raw))
	if err != nil {
		return Challenge{}, fmt.Errorf("strapi: challenge %d rules: %w", item.Get("id").Int(), err)
	}

	ch := Challenge{
		ID:             int(item.Get("id").Int()),
		Name:           attrs.Get("name").String(),
		Phase:          attrs.Get("phase").String(),
		Price:          cast.ToFloat64(attrs.Get("price").Value()),
		InitialBalance: cast.ToFloat64(attrs.Get("initialBalance").Value()),
		Rules:          *rules,
	}
	if ts := attrs.Get("updatedAt").String(); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			ch.UpdatedAt = parsed
		}
	}
	return ch, nil
}
