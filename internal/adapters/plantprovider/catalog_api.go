package plantprovider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/verdantlabs/greenhouse/internal/config"
	"github.com/verdantlabs/greenhouse/internal/logging"
	"github.com/verdantlabs/greenhouse/internal/reporting"
)

const USER_AGENT = "greenhouse/1.0 (+https://github.com/verdantlabs/greenhouse)"

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// CatalogAPI is the raw transport to the upstream plant catalog. It returns
// the response body and status code; interpreting them is the provider's job.
type CatalogAPI interface {
	GetPlants(ctx context.Context, category string) ([]byte, int, error)
	GetSortOrder(ctx context.Context) ([]byte, int, error)
}

type catalogAPIImpl struct {
	httpClient HttpClient
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
}

func (api *catalogAPIImpl) get(ctx context.Context, url string) ([]byte, int, error) {
	logger := logging.FromContext(ctx)

	// Stay inside the upstream's request budget
	err := api.limiter.Wait(ctx)
	if err != nil {
		err := fmt.Errorf("failed to wait for rate limiter: %w", err)
		logger.Error(err.Error())
		return nil, -1, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		err := fmt.Errorf("failed to create request: %w", err)
		logger.Error(err.Error())
		reporting.Report(ctx, err)
		return nil, -1, err
	}

	req.Header.Set("User-Agent", USER_AGENT)
	req.Header.Set("API-Key", api.apiKey)

	start := time.Now()
	resp, err := api.httpClient.Do(req)
	if err != nil {
		err := fmt.Errorf("failed to send request: %w", err)
		logger.Error(err.Error())
		reporting.Report(ctx, err)
		return nil, -1, err
	}

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		err := fmt.Errorf("failed to read response body: %w", err)
		logger.Error(err.Error())
		reporting.Report(ctx, err)
		return nil, -1, err
	}
	logger.Info("catalog request completed", "url", url, "status", resp.StatusCode, "duration", time.Since(start).String())

	return data, resp.StatusCode, nil
}

func (api *catalogAPIImpl) GetPlants(ctx context.Context, category string) ([]byte, int, error) {
	requestURL := fmt.Sprintf("%s/v1/plants", api.baseURL)
	if category != "" {
		requestURL = fmt.Sprintf("%s?category=%s", requestURL, url.QueryEscape(category))
	}
	return api.get(ctx, requestURL)
}

func (api *catalogAPIImpl) GetSortOrder(ctx context.Context) ([]byte, int, error) {
	return api.get(ctx, fmt.Sprintf("%s/v1/plants/sort-order", api.baseURL))
}

func NewCatalogAPI(httpClient HttpClient, baseURL, apiKey string) CatalogAPI {
	return &catalogAPIImpl{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(5), 10),
	}
}

type mockedCatalogAPI struct{}

func (api *mockedCatalogAPI) GetPlants(ctx context.Context, category string) ([]byte, int, error) {
	return []byte(`{"plants":[{"plant_id":"mock-1","name":"Mock Fern","category":"shade","grow_zone_number":9,"watering_interval_days":7}]}`), 200, nil
}

func (api *mockedCatalogAPI) GetSortOrder(ctx context.Context) ([]byte, int, error) {
	return []byte(`{"plant_ids":["mock-1"]}`), 200, nil
}

func NewCatalogAPIOrMock(conf config.Config, httpClient HttpClient) (CatalogAPI, error) {
	if conf.CatalogAPIURL() != "" {
		return NewCatalogAPI(httpClient, conf.CatalogAPIURL(), conf.CatalogAPIKey()), nil
	}
	if conf.IsDevelopment() {
		return &mockedCatalogAPI{}, nil
	}
	return nil, fmt.Errorf("missing catalog API URL in non-development environment")
}
