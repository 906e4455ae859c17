package molit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/eunseonJeong/life-planner-sub000/config"
	"github.com/eunseonJeong/life-planner-sub000/internal/models"
)

// PropertyKind selects which government endpoint a fetch hits.
type PropertyKind string

const (
	PropertySale PropertyKind = "sale"
	PropertyRent PropertyKind = "rent"
)

const (
	defaultSaleURL = "https://apis.data.go.kr/1613000/RTMSDataSvcAptTradeDev/getRTMSDataSvcAptTradeDev"
	defaultRentURL = "https://apis.data.go.kr/1613000/RTMSDataSvcAptRent/getRTMSDataSvcAptRent"
	detailBaseURL  = "https://rt.molit.go.kr/pt/gis/gis.do"

	maxErrorSnippet = 200
)

// Client fetches raw transaction records from the government open-data
// endpoints and normalizes them into Transaction records.
type Client struct {
	logger     *logrus.Logger
	client     *http.Client
	serviceKey string
	saleURL    string
	rentURL    string
}

func NewClient(serviceKey string, timeout time.Duration, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Client{
		logger:     logger,
		client:     &http.Client{Timeout: timeout},
		serviceKey: config.NormalizeServiceKey(serviceKey),
		saleURL:    defaultSaleURL,
		rentURL:    defaultRentURL,
	}
}

// FetchParams identifies one (region, year, month) page of records.
type FetchParams struct {
	Property   PropertyKind
	Year       int
	Month      int
	RegionCode string
	Page       int
	PageSize   int
}

// FetchMonth retrieves and normalizes all records for a single calendar
// month. Failures are returned to the caller; the month-range aggregator
// treats them as per-month failures.
func (c *Client) FetchMonth(ctx context.Context, p FetchParams) ([]models.Transaction, error) {
	if c.serviceKey == "" {
		return nil, ErrMissingServiceKey
	}

	endpoint := c.saleURL
	if p.Property == PropertyRent {
		endpoint = c.rentURL
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = 1000
	}

	params := url.Values{
		"serviceKey": []string{c.serviceKey},
		"LAWD_CD":    []string{p.RegionCode},
		"DEAL_YMD":   []string{fmt.Sprintf("%04d%02d", p.Year, p.Month)},
		"pageNo":     []string{fmt.Sprintf("%d", p.Page)},
		"numOfRows":  []string{fmt.Sprintf("%d", p.PageSize)},
		"_type":      []string{"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.URL.RawQuery = params.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "molit request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read molit response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > maxErrorSnippet {
			snippet = snippet[:maxErrorSnippet]
		}
		return nil, &HTTPError{Status: resp.StatusCode, Snippet: snippet}
	}

	records, err := parseBody(body)
	if err != nil {
		return nil, err
	}

	transactions := make([]models.Transaction, 0, len(records))
	for i, rec := range records {
		transactions = append(transactions, c.mapRecord(rec, p, i))
	}

	c.logger.WithFields(logrus.Fields{
		"region":   p.RegionCode,
		"period":   fmt.Sprintf("%04d-%02d", p.Year, p.Month),
		"property": p.Property,
		"count":    len(transactions),
	}).Debug("Fetched transaction records")

	return transactions, nil
}

// mapRecord converts one raw upstream item into a Transaction. Field names
// are resolved against both the current camelCase names and the legacy
// Korean tag names; numeric fields parse defensively to zero.
func (c *Client) mapRecord(rec rawRecord, p FetchParams, ordinal int) models.Transaction {
	year := parseIntField(pickFirst(rec, "dealYear", "년"))
	month := parseIntField(pickFirst(rec, "dealMonth", "월"))
	day := parseIntField(pickFirst(rec, "dealDay", "일"))
	if year == 0 {
		year = p.Year
	}
	if month == 0 {
		month = p.Month
	}
	if day == 0 {
		day = 1
	}

	tx := models.Transaction{
		ID:           fmt.Sprintf("%s-%04d%02d-%d", p.RegionCode, p.Year, p.Month, ordinal),
		PropertyType: "apartment",
		DealDate:     time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC),
		Area:         parseFloatField(pickFirst(rec, "excluUseAr", "전용면적")),
		Floor:        parseIntField(pickFirst(rec, "floor", "층")),
		BuildYear:    parseIntField(pickFirst(rec, "buildYear", "건축년도")),
		RegionCode:   p.RegionCode,
		RegionName:   config.RegionName(p.RegionCode),
		Dong:         pickFirst(rec, "umdNm", "법정동"),
		Jibun:        pickFirst(rec, "jibun", "지번"),
		ComplexName:  pickFirst(rec, "aptNm", "아파트"),
		Source:       "molit",
	}

	if p.Property == PropertySale {
		tx.DealType = models.DealSale
		// sale amounts arrive in ten-thousand KRW units
		tx.Price = parseMoney(pickFirst(rec, "dealAmount", "거래금액")) * 10000
	} else {
		deposit := parseMoney(pickFirst(rec, "deposit", "보증금액", "보증금")) * 10000
		monthly := parseMoney(pickFirst(rec, "monthlyRent", "월세금액", "월세")) * 10000
		tx.Deposit = &deposit
		tx.MonthlyRent = &monthly
		if monthly > 0 {
			tx.DealType = models.DealWolse
		} else {
			tx.DealType = models.DealJeonse
		}
	}

	tx.DetailURL = detailURL(tx)
	return tx
}

// detailURL links to the public transaction lookup page for the record's
// district and lot.
func detailURL(tx models.Transaction) string {
	params := url.Values{
		"lawdCd": []string{tx.RegionCode},
	}
	if tx.Jibun != "" {
		params.Set("jibun", tx.Jibun)
	}
	if tx.ComplexName != "" {
		params.Set("aptNm", tx.ComplexName)
	}
	return detailBaseURL + "?" + params.Encode()
}
