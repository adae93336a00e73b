package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backoffice/internal/app/ds"
	"backoffice/internal/app/repository"
)

// fakeQRStore serves objects from memory.
type fakeQRStore struct {
	objects map[string][]byte
}

func (f *fakeQRStore) FileExists(filename string) (bool, error) {
	_, ok := f.objects[filename]
	return ok, nil
}

func (f *fakeQRStore) DownloadFile(filename string) ([]byte, error) {
	data, ok := f.objects[filename]
	if !ok {
		return nil, fmt.Errorf("object %s not found", filename)
	}
	return data, nil
}

var _ ObjectStore = (*fakeQRStore)(nil)

func newQRTestRouter(t *testing.T, store ObjectStore) (*gin.Engine, *gorm.DB, ds.Agency) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrator().DropTable(
		&ds.VoucherItem{}, &ds.Voucher{}, &ds.BookingService{}, &ds.Booking{},
		&ds.Client{}, &ds.User{}, &ds.AgencyCounter{}, &ds.Agency{},
	))

	repo, err := repository.NewWithDB(db)
	require.NoError(t, err)

	agency := ds.Agency{CUIT: "30-11111111-1", RazonSocial: "Viajes del Sur SA", PuntoVenta: 1}
	require.NoError(t, db.Create(&agency).Error)

	h := NewAPIHandler(repo, nil, store, nil)

	router := gin.New()
	router.GET("/api/vouchers/:id/qr", func(c *gin.Context) {
		c.Set("agencyID", agency.ID)
	}, h.GetVoucherQR)

	return router, db, agency
}

func seedQRVoucher(t *testing.T, db *gorm.DB, agencyID uint, qrObject string) ds.Voucher {
	t.Helper()

	client := ds.Client{AgencyID: agencyID, Name: "Empresa SA", DocType: ds.ClientDocCUIT, DocNumber: "30-22222222-2"}
	require.NoError(t, db.Create(&client).Error)

	v := ds.Voucher{
		UUID:           uuid.New(),
		AgencyID:       agencyID,
		ClientID:       client.ID,
		PuntoVenta:     1,
		CbteTipo:       1,
		Numero:         1,
		NumeroCompleto: "0001-001-00000001",
		NumeroLegacy:   "1-1",
		InternalSeq:    1,
		CAE:            "71234567890001",
		CAEVencimiento: time.Now().AddDate(0, 0, 10),
		DocTipo:        80,
		DocNro:         client.DocNumber,
		RazonSocial:    client.Name,
		Moneda:         "PES",
		QRObject:       qrObject,
	}
	require.NoError(t, db.Create(&v).Error)
	return v
}

func TestGetVoucherQRServesImage(t *testing.T) {
	qrBytes := []byte("png-image-bytes")
	store := &fakeQRStore{objects: map[string][]byte{"voucher_qr_x.png": qrBytes}}
	router, db, agency := newQRTestRouter(t, store)

	v := seedQRVoucher(t, db, agency.ID, "voucher_qr_x.png")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/vouchers/%d/qr", v.ID), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, qrBytes, w.Body.Bytes())
}

func TestGetVoucherQRObjectGone(t *testing.T) {
	store := &fakeQRStore{objects: map[string][]byte{}}
	router, db, agency := newQRTestRouter(t, store)

	v := seedQRVoucher(t, db, agency.ID, "voucher_qr_gone.png")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/vouchers/%d/qr", v.ID), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetVoucherQRNoneStored(t *testing.T) {
	store := &fakeQRStore{objects: map[string][]byte{}}
	router, db, agency := newQRTestRouter(t, store)

	v := seedQRVoucher(t, db, agency.ID, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/vouchers/%d/qr", v.ID), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
