package afip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"backoffice/internal/app/config"
	"backoffice/internal/billing/voucher"
)

const dateLayout = "20060102"

// Client calls the WSFE bridge over HTTP. One instance is shared by all
// requests; the bounded timeout turns a hung authority call into a per-payer
// error instead of a stuck batch.
type Client struct {
	http       *http.Client
	baseURL    string
	cuit       string
	puntoVenta int
}

func NewClient(cfg config.AFIPConfig) *Client {
	return &Client{
		http:       &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cuit:       cfg.CUIT,
		puntoVenta: cfg.PuntoVenta,
	}
}

// caeRequest is the wire shape of the bridge's CAE endpoint, following the
// WSFE field vocabulary.
type caeRequest struct {
	Cuit         string     `json:"cuit"`
	PtoVta       int        `json:"pto_vta"`
	CbteTipo     int        `json:"cbte_tipo"`
	DocTipo      int        `json:"doc_tipo"`
	DocNro       string     `json:"doc_nro"`
	MonID        string     `json:"mon_id"`
	MonCotiz     string     `json:"mon_cotiz"`
	CbteFch      string     `json:"cbte_fch,omitempty"`
	ImpTotal     string     `json:"imp_total"`
	ImpNeto      string     `json:"imp_neto"`
	ImpIVA       string     `json:"imp_iva"`
	ImpOpEx      string     `json:"imp_op_ex"`
	Iva          []caeVat   `json:"iva,omitempty"`
	CbtesAsoc    []caeAssoc `json:"cbtes_asoc,omitempty"`
	FchServDesde string     `json:"fch_serv_desde,omitempty"`
	FchServHasta string     `json:"fch_serv_hasta,omitempty"`
}

type caeVat struct {
	ID      int    `json:"id"`
	BaseImp string `json:"base_imp"`
	Importe string `json:"importe"`
}

type caeAssoc struct {
	Tipo   int   `json:"tipo"`
	PtoVta int   `json:"pto_vta"`
	Nro    int64 `json:"nro"`
}

type caeResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	QRBase64 string `json:"qr_base64,omitempty"`
	Details  *struct {
		PtoVta    int    `json:"pto_vta"`
		CbteTipo  int    `json:"cbte_tipo"`
		CbteNro   int64  `json:"cbte_nro"`
		CAE       string `json:"cae"`
		CAEFchVto string `json:"cae_fch_vto"`
		ImpTotal  string `json:"imp_total"`
	} `json:"details,omitempty"`
}

// IssueVoucher requests a CAE for one voucher. Integration failure messages
// are propagated untouched so operators see what the authority reported.
func (c *Client) IssueVoucher(ctx context.Context, req voucher.Request) (*Authorization, error) {
	body := caeRequest{
		Cuit:     c.cuit,
		PtoVta:   c.puntoVenta,
		CbteTipo: req.Type,
		DocTipo:  req.DocType,
		DocNro:   req.DocNumber,
		MonID:    req.Currency,
		MonCotiz: req.ExchangeRate.String(),
		ImpTotal: req.Total.StringFixed(2),
		ImpNeto:  req.Net.StringFixed(2),
		ImpIVA:   req.Vat.StringFixed(2),
		ImpOpEx:  req.Exempt.StringFixed(2),
	}
	if req.Date != nil {
		body.CbteFch = req.Date.Format(dateLayout)
	}
	for _, b := range req.Buckets {
		body.Iva = append(body.Iva, caeVat{
			ID:      b.ID,
			BaseImp: b.Base.StringFixed(2),
			Importe: b.Amount.StringFixed(2),
		})
	}
	for _, a := range req.Assoc {
		body.CbtesAsoc = append(body.CbtesAsoc, caeAssoc{
			Tipo:   a.Type,
			PtoVta: a.PointOfSale,
			Nro:    a.Number,
		})
	}
	if req.Period != nil {
		body.FchServDesde = req.Period.From.Format(dateLayout)
		body.FchServHasta = req.Period.To.Format(dateLayout)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cae request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/fe/cae", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build cae request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	logrus.Infof("afip: requesting CAE, cbte_tipo=%d pto_vta=%d total=%s %s",
		req.Type, c.puntoVenta, req.Total.StringFixed(2), req.Currency)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("afip request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read afip response: %w", err)
	}

	var parsed caeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("invalid afip response (status %d): %w", resp.StatusCode, err)
	}

	if !parsed.Success || parsed.Details == nil {
		msg := parsed.Message
		if msg == "" {
			msg = fmt.Sprintf("authorization rejected (status %d)", resp.StatusCode)
		}
		return nil, fmt.Errorf("%s", msg)
	}

	expiry, err := time.Parse(dateLayout, parsed.Details.CAEFchVto)
	if err != nil {
		return nil, fmt.Errorf("invalid CAE expiry %q: %w", parsed.Details.CAEFchVto, err)
	}
	total, err := decimal.NewFromString(parsed.Details.ImpTotal)
	if err != nil {
		total = req.Total
	}

	logrus.Infof("afip: CAE granted, nro=%d cae=%s", parsed.Details.CbteNro, parsed.Details.CAE)

	return &Authorization{
		PuntoVenta: parsed.Details.PtoVta,
		CbteTipo:   parsed.Details.CbteTipo,
		Numero:     parsed.Details.CbteNro,
		CAE:        parsed.Details.CAE,
		Expiry:     expiry,
		Total:      total,
		QRBase64:   parsed.QRBase64,
		Raw:        raw,
	}, nil
}
