// Package mh contiene los clientes HTTP hacia los servicios de factura
// electrónica de El Salvador: el firmador local (JWS) y la API de recepción
// del Ministerio de Hacienda.
package mh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/pkg/config"
)

var _ billing.Signer = (*SignerClient)(nil)

// SignerClient firma documentos contra el servicio firmador (svfe-api-firmador).
// El firmador corre en la red local del emisor con el certificado .crt cargado;
// este cliente solo arma la petición y extrae el JWS de la respuesta.
type SignerClient struct {
	url      string
	password string
	client   *http.Client
}

// NewSignerClient construye el cliente del firmador.
func NewSignerClient(cfg config.MHConfig) *SignerClient {
	return &SignerClient{
		url:      cfg.FirmadorURL,
		password: cfg.FirmadorPassword,
		client:   &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

type signRequest struct {
	NIT         string          `json:"nit"`
	Activo      bool            `json:"activo"`
	PasswordPri string          `json:"passwordPri"`
	DTEJson     json.RawMessage `json:"dteJson"`
}

type signResponse struct {
	Status string          `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// Sign envía el documento al firmador y devuelve el JWS.
func (c *SignerClient) Sign(ctx context.Context, nit string, document []byte) (string, error) {
	body, err := json.Marshal(signRequest{
		NIT:         nit,
		Activo:      true,
		PasswordPri: c.password,
		DTEJson:     document,
	})
	if err != nil {
		return "", fmt.Errorf("armar petición de firma: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("crear petición de firma: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("firmador: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("leer respuesta del firmador: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("firmador respondió %d: %s", resp.StatusCode, truncate(raw, 300))
	}

	var out signResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("respuesta del firmador no es JSON: %w", err)
	}
	if out.Status != "OK" {
		return "", fmt.Errorf("firmador rechazó el documento: status=%s body=%s", out.Status, truncate(out.Body, 300))
	}

	// body llega como string JSON con el JWS.
	var jws string
	if err := json.Unmarshal(out.Body, &jws); err != nil || jws == "" {
		return "", fmt.Errorf("firmador devolvió un body inesperado: %s", truncate(out.Body, 300))
	}
	return jws, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
