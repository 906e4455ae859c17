package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/eunseonJeong/life-planner-sub000/internal/models"
)

const (
	defaultBaseURL = "https://new.land.naver.com"
	mobileBaseURL  = "https://m.land.naver.com"

	// maxEnriched bounds how many transactions per request get a listing
	// lookup; the service is rate-limited and matches are best-effort.
	maxEnriched = 10
	// staggerEvery inserts a pause after this many lookups are launched
	staggerEvery = 3

	defaultStagger = 300 * time.Millisecond
)

var jibunPattern = regexp.MustCompile(`^\d+-\d+$`)

// Client resolves transactions against the Naver Land listing directory and
// attaches deep-link URLs. Every lookup is best-effort: failures are logged
// and the transaction passes through unenriched.
type Client struct {
	logger  *logrus.Logger
	client  *http.Client
	baseURL string
	stagger time.Duration
}

func NewClient(timeout time.Duration, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Client{
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		baseURL: defaultBaseURL,
		stagger: defaultStagger,
	}
}

type enrichment struct {
	complexNo string
	url       string
	mobileURL string
}

// Enrich returns a copy of the input where up to the first maxEnriched
// transactions may gain listing references. Lookups for the eligible window
// run concurrently, throttled by a stagger delay; nothing here ever fails the
// batch.
func (c *Client) Enrich(ctx context.Context, transactions []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(transactions))
	copy(out, transactions)

	n := len(out)
	if n > maxEnriched {
		n = maxEnriched
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			e, err := c.lookup(ctx, out[idx])
			if err != nil {
				c.logger.WithError(err).WithField("transaction", out[idx].ID).Debug("Listing enrichment skipped")
				return
			}
			out[idx].NaverComplexNo = e.complexNo
			out[idx].NaverURL = e.url
			out[idx].NaverURLMobile = e.mobileURL
		}(i)
		if (i+1)%staggerEvery == 0 && i+1 < n {
			time.Sleep(c.stagger)
		}
	}
	wg.Wait()

	return out
}

// lookup runs the full match pipeline for one transaction: candidate name,
// sub-region code, complex search, optional coordinates, optional article.
func (c *Client) lookup(ctx context.Context, tx models.Transaction) (*enrichment, error) {
	name := candidateName(tx)
	if name == "" {
		return nil, errors.New("no usable complex name")
	}

	cortarNo := subRegionCode(tx.RegionCode)
	if cortarNo == "" {
		return nil, errors.Errorf("cannot derive sub-region code from %q", tx.RegionCode)
	}

	complexNo, err := c.findComplex(ctx, cortarNo, name)
	if err != nil {
		return nil, err
	}

	// coordinates and article id are both optional
	center, hasCenter := c.complexCenter(ctx, complexNo)
	articleNo := c.representativeArticle(ctx, complexNo, tx.DealType)

	desktop := fmt.Sprintf("%s/complexes/%s", defaultBaseURL, complexNo)
	sep := "?"
	if hasCenter {
		desktop += fmt.Sprintf("%sms=%.6f,%.6f,17", sep, center.Lat(), center.Lon())
		sep = "&"
	}
	if articleNo != "" {
		desktop += sep + "articleNo=" + articleNo
	}

	return &enrichment{
		complexNo: complexNo,
		url:       desktop,
		mobileURL: fmt.Sprintf("%s/complex/info/%s", mobileBaseURL, complexNo),
	}, nil
}

// candidateName prefers the explicit building name, else the trailing token
// of the address with a jibun suffix stripped. Names shorter than two runes
// or that are themselves lot numbers cannot be matched.
func candidateName(tx models.Transaction) string {
	name := strings.TrimSpace(tx.ComplexName)
	if name == "" {
		fields := strings.Fields(strings.TrimSpace(tx.Dong + " " + tx.Jibun))
		if len(fields) > 0 {
			last := fields[len(fields)-1]
			if jibunPattern.MatchString(last) && len(fields) > 1 {
				last = fields[len(fields)-2]
			}
			name = last
		}
	}
	if len([]rune(name)) < 2 || jibunPattern.MatchString(name) {
		return ""
	}
	return name
}

// subRegionCode pads the 5-digit administrative code to the 10-digit cortarNo
// the listing service keys its directory by.
func subRegionCode(regionCode string) string {
	if len(regionCode) != 5 {
		return ""
	}
	return regionCode + "00000"
}

type complexList struct {
	ComplexList []struct {
		ComplexNo   string `json:"complexNo"`
		ComplexName string `json:"complexName"`
	} `json:"complexList"`
}

// findComplex picks the best directory entry for a name: exact match
// ignoring case and spaces, then substring, then the first result.
func (c *Client) findComplex(ctx context.Context, cortarNo, name string) (string, error) {
	var result complexList
	path := fmt.Sprintf("/api/regions/complexes?cortarNo=%s&realEstateType=APT&order=", cortarNo)
	if err := c.getJSON(ctx, path, &result); err != nil {
		return "", err
	}
	if len(result.ComplexList) == 0 {
		return "", errors.New("no complexes in sub-region")
	}

	want := foldName(name)
	for _, entry := range result.ComplexList {
		if foldName(entry.ComplexName) == want {
			return entry.ComplexNo, nil
		}
	}
	for _, entry := range result.ComplexList {
		folded := foldName(entry.ComplexName)
		if strings.Contains(folded, want) || strings.Contains(want, folded) {
			return entry.ComplexNo, nil
		}
	}
	return result.ComplexList[0].ComplexNo, nil
}

func foldName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}

// complexCenter fetches the complex's map coordinates. Absence is fine; the
// deep link just omits the map center.
func (c *Client) complexCenter(ctx context.Context, complexNo string) (orb.Point, bool) {
	var detail map[string]interface{}
	path := fmt.Sprintf("/api/complexes/%s?sameAddressGroup=false", complexNo)
	if err := c.getJSON(ctx, path, &detail); err != nil {
		c.logger.WithError(err).WithField("complex", complexNo).Debug("Complex detail unavailable")
		return orb.Point{}, false
	}

	lat, okLat := floatField(detail, "latitude", "lat")
	lon, okLon := floatField(detail, "longitude", "lon", "lng")
	if !okLat || !okLon {
		if inner, ok := detail["complexDetail"].(map[string]interface{}); ok {
			lat, okLat = floatField(inner, "latitude", "lat")
			lon, okLon = floatField(inner, "longitude", "lon", "lng")
		}
	}
	if !okLat || !okLon {
		return orb.Point{}, false
	}
	return orb.Point{lon, lat}, true
}

// representativeArticle fetches one current listing id for the complex and
// trade type. Empty string when none is available.
func (c *Client) representativeArticle(ctx context.Context, complexNo string, dealType models.DealType) string {
	var result struct {
		ArticleList []struct {
			ArticleNo string `json:"articleNo"`
		} `json:"articleList"`
	}
	path := fmt.Sprintf("/api/articles/complex/%s?realEstateType=APT&tradeType=%s&page=1", complexNo, tradeTypeCode(dealType))
	if err := c.getJSON(ctx, path, &result); err != nil {
		c.logger.WithError(err).WithField("complex", complexNo).Debug("Article lookup unavailable")
		return ""
	}
	if len(result.ArticleList) == 0 {
		return ""
	}
	return result.ArticleList[0].ArticleNo
}

// tradeTypeCode maps deal types onto the listing service's vocabulary.
func tradeTypeCode(dealType models.DealType) string {
	switch dealType {
	case models.DealJeonse:
		return "B1"
	case models.DealWolse:
		return "B2"
	default:
		return "A1"
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	// the listing endpoints reject requests without browser-like headers
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", defaultBaseURL)

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "listing request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return errors.New("listing service rate limited")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("listing service returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read listing response")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to parse listing response")
	}
	return nil
}

// floatField reads a numeric field that the listing service may encode as
// either a number or a string.
func floatField(m map[string]interface{}, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			if v != 0 {
				return v, true
			}
		case string:
			var f float64
			if _, err := fmt.Sscanf(strings.TrimSpace(v), "%f", &f); err == nil && f != 0 {
				return f, true
			}
		}
	}
	return 0, false
}
