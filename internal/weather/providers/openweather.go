package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/meteo-template/internal/weather"
)

const defaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5/forecast"

var validate = validator.New()

// OpenWeatherProvider implements weather.Provider for the OpenWeatherMap 5 day / 3 hour forecast.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	country string
	lang    string
	fetch   *fetcher
}

// OpenWeatherOptions tunes the provider; zero values use the defaults.
type OpenWeatherOptions struct {
	BaseURL string
	Country string
	Lang    string
	Backoff Backoff
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts OpenWeatherOptions) *OpenWeatherProvider {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultOpenWeatherURL
	}
	if opts.Lang == "" {
		opts.Lang = "ru"
	}
	if opts.Backoff.Base <= 0 {
		opts.Backoff.Base = 500 * time.Millisecond
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: opts.BaseURL,
		country: opts.Country,
		lang:    opts.Lang,
		fetch:   newFetcher("openweather", client, opts.Backoff),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// statusCode accepts the "cod" field as either a JSON string or number.
type statusCode string

func (c *statusCode) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = statusCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*c = statusCode(n.String())
	return nil
}

type forecastPayload struct {
	Cod     statusCode     `json:"cod"`
	Message json.RawMessage `json:"message"`
	List    []forecastItem `json:"list" validate:"required,min=1,dive"`
}

type forecastItem struct {
	Dt   int64 `json:"dt" validate:"required,gt=0"`
	Main struct {
		Temp     *float64 `json:"temp" validate:"required"`
		Pressure float64  `json:"pressure" validate:"gt=0"`
	} `json:"main"`
	Wind struct {
		Speed float64  `json:"speed" validate:"gte=0"`
		Deg   *float64 `json:"deg" validate:"omitempty,gte=0,lte=360"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all" validate:"gte=0,lte=100"`
	} `json:"clouds"`
	Weather []struct {
		ID          int    `json:"id" validate:"required"`
		Description string `json:"description"`
	} `json:"weather" validate:"required,min=1,dive"`
}

// FetchForecast returns the typed sample list for city in provider order.
// A non-success "cod" or HTTP status becomes a *weather.ProviderError.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, city string) (weather.Forecast, error) {
	if p.apiKey == "" {
		return weather.Forecast{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		q := city
		if p.country != "" {
			q = fmt.Sprintf("%s,%s", city, p.country)
		}
		values.Set("q", q)
		values.Set("units", "metric")
		values.Set("lang", p.lang)
		values.Set("appid", p.apiKey)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := p.fetch.do(ctx, buildRequest)
	if err != nil {
		return weather.Forecast{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return weather.Forecast{}, fmt.Errorf("failed to read response body: %w", err)
	}

	return parseForecast(city, resp.StatusCode, body)
}

func parseForecast(city string, httpStatus int, body []byte) (weather.Forecast, error) {
	var payload forecastPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		if httpStatus < 200 || httpStatus >= 300 {
			return weather.Forecast{}, &weather.ProviderError{Status: strconv.Itoa(httpStatus), Message: string(body)}
		}
		return weather.Forecast{}, &weather.ProviderError{Message: "malformed forecast response: " + err.Error()}
	}

	status := string(payload.Cod)
	if status == "" {
		status = strconv.Itoa(httpStatus)
	}
	if status != "200" || httpStatus < 200 || httpStatus >= 300 {
		return weather.Forecast{}, &weather.ProviderError{Status: status, Message: messageText(payload.Message)}
	}

	if err := validate.Struct(payload); err != nil {
		return weather.Forecast{}, &weather.ProviderError{Status: status, Message: "invalid forecast response: " + err.Error()}
	}

	samples := make([]weather.ForecastSample, 0, len(payload.List))
	for _, it := range payload.List {
		samples = append(samples, weather.ForecastSample{
			Timestamp:     time.Unix(it.Dt, 0).UTC(),
			TemperatureC:  *it.Main.Temp,
			PressureHpa:   it.Main.Pressure,
			WindSpeedMS:   it.Wind.Speed,
			WindDegrees:   it.Wind.Deg,
			CloudPercent:  it.Clouds.All,
			ConditionCode: it.Weather[0].ID,
			Description:   it.Weather[0].Description,
		})
	}

	return weather.Forecast{City: city, Status: status, Samples: samples}, nil
}

// messageText renders "message", which is a string on errors and a number on success.
func messageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
