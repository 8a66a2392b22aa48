package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/labstock/labstock/internal/shared"
	"github.com/labstock/labstock/internal/stock"
)

const inventoryCSV = "month,itemNumber,item,phongBan,quantity,uom,price,total,commodity\n" +
	"1,A-1,Pipette tips,HCMCHEM,10,pcs,5,50,Plastics\n"

const outboundCSV = "month,account,itemNumber,item,quantity,uom,price,total,currency,receiver,commodity\n" +
	"1,6421,A-1,Pipette tips,2,pcs,5,10,VND,Lab A,Plastics\n"

type recordingEnqueuer struct {
	versions []int64
}

func (r *recordingEnqueuer) EnqueueWarmup(ctx context.Context, version int64) error {
	r.versions = append(r.versions, version)
	return nil
}

func newTestRouter(store *stock.Store, warmup WarmupEnqueuer) http.Handler {
	h := NewHandler(slog.Default(), store, shared.NewAuditLogger(nil), warmup, 1<<20)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func multipartUpload(t *testing.T, target, filename, content, stagingID string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if stagingID != "" {
		require.NoError(t, mw.WriteField("stagingId", stagingID))
	}
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeUpload(t *testing.T, rec *httptest.ResponseRecorder) uploadResponse {
	t.Helper()
	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestTwoStageUploadAndApply(t *testing.T) {
	store := stock.NewStore()
	warmup := &recordingEnqueuer{}
	router := newTestRouter(store, warmup)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "/inventory", "tonkho.csv", inventoryCSV, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	first := decodeUpload(t, rec)
	require.NotEmpty(t, first.StagingID)
	require.Equal(t, stock.TableInventory, first.Table)
	require.Equal(t, 1, first.Rows)

	// Live data is untouched until apply.
	require.Empty(t, store.Snapshot().Inventory)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "/outbound", "xuatkho.csv", outboundCSV, first.StagingID))
	require.Equal(t, http.StatusOK, rec.Code)
	second := decodeUpload(t, rec)
	require.Equal(t, first.StagingID, second.StagingID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/staging/"+first.StagingID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"readyToApply":true`)

	rec = httptest.NewRecorder()
	applyBody := strings.NewReader(`{"stagingId":"` + first.StagingID + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/apply", applyBody)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var applied applyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &applied))
	require.Equal(t, int64(1), applied.Version)
	require.Equal(t, 1, applied.InventoryRows)
	require.Equal(t, 1, applied.OutboundRows)

	snap := store.Snapshot()
	require.Equal(t, "A-1", snap.Inventory[0].ItemNumber)
	require.Equal(t, "A-1", snap.Outbound[0].ItemNumber)
	require.Equal(t, []int64{1}, warmup.versions)
}

func TestApplyRejectsPartialStaging(t *testing.T) {
	store := stock.NewStore()
	router := newTestRouter(store, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "/inventory", "tonkho.csv", inventoryCSV, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	staged := decodeUpload(t, rec)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/apply", strings.NewReader(`{"stagingId":"`+staged.StagingID+`"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Empty(t, store.Snapshot().Inventory)
}

func TestApplyUnknownStaging(t *testing.T) {
	router := newTestRouter(stock.NewStore(), nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/apply", strings.NewReader(`{"stagingId":"5720cf05-2a86-4a5c-9bd7-06cf11c1f54c"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadRejectsMissingColumns(t *testing.T) {
	router := newTestRouter(stock.NewStore(), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "/inventory", "tonkho.csv", "month,item\n1,tips\n", ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "missing columns")
}

func TestUploadRejectsUnknownExtension(t *testing.T) {
	router := newTestRouter(stock.NewStore(), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "/inventory", "tonkho.txt", inventoryCSV, ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadReportsDiagnostics(t *testing.T) {
	router := newTestRouter(stock.NewStore(), nil)

	bad := "month,itemNumber,item,phongBan,quantity,uom,price,total,commodity\n" +
		"1,A-1,Pipette tips,HCMCHEM,abc,pcs,5,50,Plastics\n"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "/inventory", "tonkho.csv", bad, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeUpload(t, rec)
	require.Len(t, resp.Diagnostics, 1)
	require.Equal(t, "quantity", resp.Diagnostics[0].Column)
}
