package woocommerce

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dushixiang/propdesk/pkg/restclient"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

const (
	ordersPath      = "/wp-json/wc/v3/orders"
	defaultPerPage  = 50
	wooTimeLayout   = "2006-01-02T15:04:05"
	totalPagesField = "X-WP-TotalPages"
)

// LineItem 订单中的商品
type LineItem struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

// Order WooCommerce 订单
type Order struct {
	ID           int             `json:"id"`
	Number       string          `json:"number"`
	Status       string          `json:"status"`
	Total        decimal.Decimal `json:"total"`
	Currency     string          `json:"currency"`
	BillingEmail string          `json:"billing_email"`
	BillingName  string          `json:"billing_name"`
	LineItems    []LineItem      `json:"line_items"`
	CreatedAt    time.Time       `json:"created_at"`
}

type wireOrder struct {
	ID             int             `json:"id"`
	Number         string          `json:"number"`
	Status         string          `json:"status"`
	Total          decimal.Decimal `json:"total"`
	Currency       string          `json:"currency"`
	DateCreatedGMT string          `json:"date_created_gmt"`
	Billing        struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
	} `json:"billing"`
	LineItems []LineItem `json:"line_items"`
}

type ListOrdersParams struct {
	Status []string
	After  time.Time
}

type Client struct {
	rest    *restclient.Client
	perPage int
}

// New 使用 consumer key/secret 作为 basic auth
func New(baseURL, consumerKey, consumerSecret string, opts restclient.Options) *Client {
	opts.Username = consumerKey
	opts.Password = consumerSecret
	return &Client{rest: restclient.New(baseURL, opts), perPage: defaultPerPage}
}

// ListOrders 逐页读取订单，按创建时间升序
func (c *Client) ListOrders(ctx context.Context, params ListOrdersParams) ([]Order, error) {
	var orders []Order
	for page := 1; ; page++ {
		query := url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(c.perPage)},
			"orderby":  {"date"},
			"order":    {"asc"},
		}
		if len(params.Status) > 0 {
			query.Set("status", strings.Join(params.Status, ","))
		}
		if !params.After.IsZero() {
			query.Set("after", params.After.UTC().Format(wooTimeLayout))
		}

		var batch []wireOrder
		header, err := c.rest.Get(ctx, ordersPath, query, &batch)
		if err != nil {
			return nil, fmt.Errorf("woocommerce: list orders page %d: %w", page, err)
		}
		for _, w := range batch {
			orders = append(orders, w.order())
		}

		if len(batch) < c.perPage {
			break
		}
		if total := header.Get(totalPagesField); total != "" && page >= cast.ToInt(total) {
			break
		}
	}
	return orders, nil
}

func (w wireOrder) order() Order {
	o := Order{
		ID:           w.ID,
		Number:       w.Number,
		Status:       w.Status,
		Total:        w.Total,
		Currency:     w.Currency,
		BillingEmail: w.Billing.Email,
		BillingName:  strings.TrimSpace(w.Billing.FirstName + " " + w.Billing.LastName),
		LineItems:    w.LineItems,
	}
	if created, err := time.ParseInLocation(wooTimeLayout, w.DateCreatedGMT, time.UTC); err == nil {
		o.CreatedAt = created
	}
	return o
}
