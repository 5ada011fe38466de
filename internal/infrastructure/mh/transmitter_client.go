package mh

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/pkg/config"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

var _ billing.Transmitter = (*TransmitterClient)(nil)

// TransmitterClient transmite DTE y eventos de invalidación a la API de
// recepción del MH. Autentica con usuario (NIT) y contraseña, cachea el token
// y lo renueva antes de expirar. Un timeout o error de transporte se devuelve
// como error; el orquestador decide el estado del documento.
type TransmitterClient struct {
	baseURL  string
	authUser string
	authPwd  string
	client   *http.Client
	log      *logger.Logger

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// NewTransmitterClient construye el cliente de recepción MH.
func NewTransmitterClient(cfg config.MHConfig, log *logger.Logger) *TransmitterClient {
	return &TransmitterClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		authUser: cfg.AuthUser,
		authPwd:  cfg.AuthPwd,
		client:   &http.Client{Timeout: cfg.HTTPTimeout},
		log:      log,
	}
}

type receptionResponse struct {
	Estado          string   `json:"estado"` // PROCESADO | RECHAZADO
	SelloRecibido   string   `json:"selloRecibido"`
	FhProcesamiento string   `json:"fhProcesamiento"` // 02/01/2026 10:30:00
	CodigoMsg       string   `json:"codigoMsg"`
	DescripcionMsg  string   `json:"descripcionMsg"`
	Observaciones   []string `json:"observaciones"`
}

type documentEnvelope struct {
	Ambiente         string `json:"ambiente"`
	IdEnvio          int    `json:"idEnvio"`
	Version          int    `json:"version"`
	TipoDte          string `json:"tipoDte"`
	Documento        string `json:"documento"`
	CodigoGeneracion string `json:"codigoGeneracion"`
}

type voidEnvelope struct {
	Ambiente  string `json:"ambiente"`
	IdEnvio   int    `json:"idEnvio"`
	Version   int    `json:"version"`
	Documento string `json:"documento"`
}

// TransmitDocument envía un DTE firmado a /fesv/recepciondte.
func (c *TransmitterClient) TransmitDocument(ctx context.Context, env billing.Envelope, nit string) (*billing.TransmitResult, error) {
	body := documentEnvelope{
		Ambiente:         env.Ambiente,
		IdEnvio:          env.IdEnvio,
		Version:          env.Version,
		TipoDte:          env.TipoDte,
		Documento:        env.Documento,
		CodigoGeneracion: env.CodigoGeneracion,
	}
	return c.post(ctx, "/fesv/recepciondte", body)
}

// TransmitVoid envía un evento de invalidación firmado a /fesv/anulardte.
func (c *TransmitterClient) TransmitVoid(ctx context.Context, env billing.VoidEnvelope, nit string) (*billing.TransmitResult, error) {
	body := voidEnvelope{
		Ambiente:  env.Ambiente,
		IdEnvio:   env.IdEnvio,
		Version:   env.Version,
		Documento: env.Documento,
	}
	return c.post(ctx, "/fesv/anulardte", body)
}

func (c *TransmitterClient) post(ctx context.Context, path string, body any) (*billing.TransmitResult, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("armar envío MH: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("crear petición MH: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recepción MH: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("leer respuesta MH: %w", err)
	}

	// El MH responde 200 en aceptados y 400 en rechazos con el mismo esquema;
	// cualquier otro status es un problema de transporte/servicio.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return nil, fmt.Errorf("MH respondió %d: %s", resp.StatusCode, truncate(raw, 300))
	}

	var out receptionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("respuesta MH no es JSON: %s", truncate(raw, 300))
	}
	return c.classify(out), nil
}

func (c *TransmitterClient) classify(out receptionResponse) *billing.TransmitResult {
	result := &billing.TransmitResult{
		Accepted:       out.Estado == "PROCESADO" && out.SelloRecibido != "",
		Sello:          out.SelloRecibido,
		CodigoMsg:      out.CodigoMsg,
		DescripcionMsg: out.DescripcionMsg,
		Observaciones:  out.Observaciones,
	}
	if out.FhProcesamiento != "" {
		if t, err := time.Parse("02/01/2006 15:04:05", out.FhProcesamiento); err == nil {
			result.FhProcesamiento = &t
		}
	}
	return result
}

// authToken devuelve un token vigente, autenticando contra /seguridad/auth si
// el cacheado expiró. El MH emite tokens de ~24h; se renueva con margen.
func (c *TransmitterClient) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExp) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("user", c.authUser)
	form.Set("pwd", c.authPwd)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/seguridad/auth", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("crear petición de auth MH: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth MH: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("leer respuesta de auth MH: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth MH respondió %d: %s", resp.StatusCode, truncate(raw, 300))
	}

	var out struct {
		Status string `json:"status"`
		Body   struct {
			Token string `json:"token"`
		} `json:"body"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || out.Body.Token == "" {
		return "", fmt.Errorf("auth MH devolvió un body inesperado: %s", truncate(raw, 300))
	}

	c.token = out.Body.Token
	c.tokenExp = time.Now().Add(23 * time.Hour)
	c.log.Debug().Msg("token MH renovado")
	return c.token, nil
}
