package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xniw/pricelist/internal/config"
)

var (
	headerIT      = []string{"Codice a barre", "Descrizione", "Qta", "Prezzo"}
	headerSwapped = []string{"Codice a barre", "Descrizione", "Prezzo", "Qta"}
)

func htmlList(rs ...[]string) []byte {
	var b strings.Builder
	b.WriteString("<html><head><title>Listino</title></head><body><table>")
	for _, r := range rs {
		b.WriteString("<tr>")
		for _, c := range r {
			fmt.Fprintf(&b, "<td>%s</td>", c)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table></body></html>")
	return []byte(b.String())
}

type part struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, path string, parts ...part) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.name)
		require.NoError(t, err)
		_, err = fw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(t *testing.T, cfg *config.Config, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	New(cfg, nil).Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func listIT(barcodes ...string) []byte {
	rs := [][]string{headerIT}
	for _, b := range barcodes {
		rs = append(rs, []string{b, "Widget", "2", "9,99"})
	}
	return htmlList(rs...)
}

func TestHealth(t *testing.T) {
	rec := serve(t, config.Defaults(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAnalyze(t *testing.T) {
	req := multipartRequest(t, "/v1/analyze", part{"file", "listino.xls", listIT("8001234567890", "8001234567891")})
	rec := serve(t, config.Defaults(), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decode[ImportResponse](t, rec)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "listino.xls", resp.Source)
	assert.Equal(t, "HTML", resp.Format)
	assert.Equal(t, "Listino", resp.Metadata["title"])
	assert.True(t, resp.HasHeader)
	assert.Equal(t, []string{"barcode", "productName", "quantity", "purchasePrice"}, resp.Header)
	assert.Equal(t, headerIT, resp.OriginalHeader)
	assert.Equal(t, 0, resp.Roles["barcode"])
	assert.Len(t, resp.Rows, 2)
	assert.Equal(t, 3, resp.Metrics.EssentialFound)
	assert.Empty(t, resp.InsertedRoles)
}

func TestAnalyze_Errors(t *testing.T) {
	small := config.Defaults()
	small.MaxFileSize = 16

	tests := []struct {
		name   string
		cfg    *config.Config
		req    func(t *testing.T) *http.Request
		status int
		kind   string
	}{
		{
			name: "unsupported extension",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/v1/analyze", part{"file", "list.csv", []byte("a;b;c")})
			},
			status: http.StatusUnsupportedMediaType,
			kind:   "unsupported_extension",
		},
		{
			name: "corrupt workbook",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/v1/analyze", part{"file", "list.xlsx", []byte("not a zip")})
			},
			status: http.StatusUnprocessableEntity,
			kind:   "invalid_format",
		},
		{
			name: "file too large",
			cfg:  small,
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/v1/analyze", part{"file", "list.html", listIT("8001234567890")})
			},
			status: http.StatusUnprocessableEntity,
			kind:   "invalid_format",
		},
		{
			name: "missing file",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/v1/analyze", part{"other", "list.html", listIT("8001234567890")})
			},
			status: http.StatusBadRequest,
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader("{}"))
			},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if cfg == nil {
				cfg = config.Defaults()
			}
			rec := serve(t, cfg, tt.req(t))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			resp := decode[errorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.kind, resp.Kind)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestMerge(t *testing.T) {
	cfg := config.Defaults()
	cfg.MergeConcurrency = 2

	req := multipartRequest(t, "/v1/merge",
		part{"files", "primavera.html", listIT("8001234567890", "8001234567891")},
		part{"files", "estate.html", listIT("8001234567892")},
	)
	rec := serve(t, cfg, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[MergeResponse](t, rec)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, []string{"barcode", "productName", "quantity", "purchasePrice"}, resp.Header)
	assert.Len(t, resp.Rows, 3)
	assert.Equal(t, "8001234567892", resp.Rows[2][0])
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, "primavera.html", resp.Sources[0].Name)
	assert.Equal(t, "HTML", resp.Sources[0].Format)
	assert.Equal(t, 1, resp.Sources[1].Rows)
	assert.Equal(t, 3, resp.Metrics.TotalRows)
}

func TestMerge_Errors(t *testing.T) {
	t.Run("incompatible header", func(t *testing.T) {
		req := multipartRequest(t, "/v1/merge",
			part{"files", "a.html", listIT("8001234567890")},
			part{"files", "b.html", htmlList(headerSwapped, []string{"8001234567891", "Widget", "9,99", "2"})},
		)
		rec := serve(t, config.Defaults(), req)
		assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

		resp := decode[errorResponse](t, rec)
		assert.Equal(t, "incompatible_header", resp.Kind)
		assert.Equal(t, "b.html", resp.Source)
	})

	t.Run("single file", func(t *testing.T) {
		req := multipartRequest(t, "/v1/merge", part{"files", "a.html", listIT("8001234567890")})
		rec := serve(t, config.Defaults(), req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[errorResponse](t, rec).Error, "at least two files")
	})
}

func TestRoutes(t *testing.T) {
	rec := serve(t, config.Defaults(), httptest.NewRequest(http.MethodGet, "/v1/analyze", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = serve(t, config.Defaults(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
