package molit

import (
	"encoding/json"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// rawRecord is one upstream item with every field flattened to a string. The
// API has renamed its fields over the years (Korean tags, then camelCase), so
// records are kept generic and read through pickFirst.
type rawRecord map[string]string

// pickFirst returns the first non-empty value among the given keys.
func pickFirst(r rawRecord, keys ...string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// parseBody normalizes either body format into a flat record list. The
// upstream replies with XML or JSON depending on the _type parameter and on
// its own gateway mood, so the format is sniffed, never assumed.
func parseBody(body []byte) ([]rawRecord, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "<") {
		return parseXMLBody([]byte(trimmed))
	}
	return parseJSONBody([]byte(trimmed))
}

func (r *rawRecord) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	m := rawRecord{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var v string
			if err := d.DecodeElement(&v, &t); err != nil {
				return err
			}
			m[t.Name.Local] = strings.TrimSpace(v)
		case xml.EndElement:
			if t.Name == start.Name {
				*r = m
				return nil
			}
		}
	}
}

// xmlEnvelope covers both the regular response root and the gateway error
// wrapper (OpenAPI_ServiceResponse); the root element name is ignored.
type xmlEnvelope struct {
	Header struct {
		ResultCode string `xml:"resultCode"`
		ResultMsg  string `xml:"resultMsg"`
	} `xml:"header"`
	Items        []rawRecord `xml:"body>items>item"`
	CmmMsgHeader *struct {
		ErrMsg           string `xml:"errMsg"`
		ReturnAuthMsg    string `xml:"returnAuthMsg"`
		ReturnReasonCode string `xml:"returnReasonCode"`
	} `xml:"cmmMsgHeader"`
}

func parseXMLBody(body []byte) ([]rawRecord, error) {
	var env xmlEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(err, "malformed XML response")
	}
	if env.CmmMsgHeader != nil {
		msg := env.CmmMsgHeader.ReturnAuthMsg
		if msg == "" {
			msg = env.CmmMsgHeader.ErrMsg
		}
		return nil, &APIError{Code: env.CmmMsgHeader.ReturnReasonCode, Message: msg}
	}
	if !isSuccessCode(env.Header.ResultCode) {
		return nil, &APIError{Code: env.Header.ResultCode, Message: env.Header.ResultMsg}
	}
	return env.Items, nil
}

type jsonEnvelope struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			Items json.RawMessage `json:"items"`
		} `json:"body"`
	} `json:"response"`
	// gateway error wrapper, same shape as the XML one
	CmmMsgHeader *struct {
		ErrMsg           string `json:"errMsg"`
		ReturnAuthMsg    string `json:"returnAuthMsg"`
		ReturnReasonCode string `json:"returnReasonCode"`
	} `json:"cmmMsgHeader"`
}

func parseJSONBody(body []byte) ([]rawRecord, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(err, "malformed JSON response")
	}
	if env.CmmMsgHeader != nil {
		msg := env.CmmMsgHeader.ReturnAuthMsg
		if msg == "" {
			msg = env.CmmMsgHeader.ErrMsg
		}
		return nil, &APIError{Code: env.CmmMsgHeader.ReturnReasonCode, Message: msg}
	}
	if !isSuccessCode(env.Response.Header.ResultCode) {
		return nil, &APIError{Code: env.Response.Header.ResultCode, Message: env.Response.Header.ResultMsg}
	}
	return normalizeJSONItems(env.Response.Body.Items)
}

// normalizeJSONItems coerces the items field into a flat list. The upstream
// encodes zero items as an empty string, one item as a bare object, and
// several items as an array.
func normalizeJSONItems(raw json.RawMessage) ([]rawRecord, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var empty string
	if err := json.Unmarshal(raw, &empty); err == nil && strings.TrimSpace(empty) == "" {
		return nil, nil
	}

	var wrapper struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, errors.Wrap(err, "malformed items field")
	}
	if len(wrapper.Item) == 0 {
		return nil, nil
	}

	var list []map[string]interface{}
	if err := json.Unmarshal(wrapper.Item, &list); err == nil {
		return stringifyAll(list), nil
	}
	var single map[string]interface{}
	if err := json.Unmarshal(wrapper.Item, &single); err != nil {
		return nil, errors.Wrap(err, "malformed item field")
	}
	return stringifyAll([]map[string]interface{}{single}), nil
}

func stringifyAll(items []map[string]interface{}) []rawRecord {
	records := make([]rawRecord, 0, len(items))
	for _, item := range items {
		rec := rawRecord{}
		for k, v := range item {
			rec[k] = stringify(v)
		}
		records = append(records, rec)
	}
	return records
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func isSuccessCode(code string) bool {
	switch code {
	case "00", "000":
		return true
	}
	return false
}

// parseMoney reads an amount like "82,500" defensively: everything but
// digits is dropped, unparseable values become 0.
func parseMoney(s string) int64 {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseIntField(s string) int {
	return int(parseMoney(s))
}

func parseFloatField(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}
