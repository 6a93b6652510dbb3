package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"flujo/internal/moneda"
)

// tasaRespuesta is the provider's wire format.
type tasaRespuesta struct {
	Desde string          `json:"base"`
	Hasta string          `json:"destino"`
	Tasa  decimal.Decimal `json:"tasa"`
	Fecha string          `json:"fecha"`
}

// TasasClient resolves exchange rates from an HTTP provider, with a Redis
// cache in front and a circuit breaker around the provider.
//
// Resolution order: fresh cache hit, then provider (refreshing the cache),
// then stale cache as last resort. Only when all three fail does a conversion
// error out; a rate of 1 is never assumed across currencies.
type TasasClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	rdb        *redis.Client
	breaker    *CircuitBreaker
	cacheTTL   time.Duration
}

func NewTasasClient(baseURL, apiKey string, timeout time.Duration, cacheTTL time.Duration, rdb *redis.Client) *TasasClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TasasClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		rdb:        rdb,
		breaker:    NewCircuitBreaker(DefaultCBConfig()),
		cacheTTL:   cacheTTL,
	}
}

var _ moneda.FuenteTasas = (*TasasClient)(nil)

// Tasa implements moneda.FuenteTasas.
func (c *TasasClient) Tasa(ctx context.Context, desde, hasta string) (decimal.Decimal, error) {
	if desde == hasta {
		return decimal.NewFromInt(1), nil
	}

	clave := cacheKey(desde, hasta)
	if tasa, ok := c.cacheGet(ctx, clave); ok {
		return tasa, nil
	}

	tasa, err := c.consultar(ctx, desde, hasta)
	if err == nil {
		c.cacheSet(ctx, clave, tasa)
		return tasa, nil
	}
	log.Warn().Err(err).Str("desde", desde).Str("hasta", hasta).
		Msg("proveedor de tasas no disponible, intentando caché vencida")

	// Stale fallback: the key without TTL survives longer than the fresh one.
	if tasa, ok := c.cacheGet(ctx, clave+":ultima"); ok {
		return tasa, nil
	}
	return decimal.Zero, fmt.Errorf("%w: %s→%s", moneda.ErrTasaNoDisponible, desde, hasta)
}

func (c *TasasClient) consultar(ctx context.Context, desde, hasta string) (decimal.Decimal, error) {
	var tasa decimal.Decimal
	err := c.breaker.Execute(func() error {
		url := fmt.Sprintf("%s/tasas?base=%s&destino=%s", c.baseURL, desde, hasta)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("tasas: create request: %w", err)
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("tasas: proveedor inaccesible: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("tasas: proveedor respondió %d", resp.StatusCode)
		}

		var cuerpo tasaRespuesta
		if err := json.NewDecoder(resp.Body).Decode(&cuerpo); err != nil {
			return fmt.Errorf("tasas: decode response: %w", err)
		}
		if cuerpo.Tasa.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("tasas: tasa inválida %s", cuerpo.Tasa)
		}
		tasa = cuerpo.Tasa
		return nil
	})
	if errors.Is(err, ErrCircuitOpen) {
		return decimal.Zero, fmt.Errorf("tasas: %w", err)
	}
	return tasa, err
}

func (c *TasasClient) cacheGet(ctx context.Context, clave string) (decimal.Decimal, bool) {
	if c.rdb == nil {
		return decimal.Zero, false
	}
	val, err := c.rdb.Get(ctx, clave).Result()
	if err != nil {
		return decimal.Zero, false
	}
	tasa, err := decimal.NewFromString(val)
	if err != nil || tasa.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	return tasa, true
}

func (c *TasasClient) cacheSet(ctx context.Context, clave string, tasa decimal.Decimal) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, clave, tasa.String(), c.cacheTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("tasas: no se pudo cachear la tasa")
	}
	// the ":ultima" copy never expires and backs the stale fallback
	if err := c.rdb.Set(ctx, clave+":ultima", tasa.String(), 0).Err(); err != nil {
		log.Warn().Err(err).Msg("tasas: no se pudo guardar la última tasa conocida")
	}
}

func cacheKey(desde, hasta string) string {
	return fmt.Sprintf("tasa:%s:%s", desde, hasta)
}
