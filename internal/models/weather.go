package models

// WeatherReport is the payload served by /get_weather/{key}: the current
// conditions for a scanned location merged with its static registry fields.
// Humidity and Pressure are nil when the upstream hourly series carried no
// samples; they encode as JSON null so the frontend can tell "no reading"
// apart from zero.
type WeatherReport struct {
	Location      string   `json:"location"`
	Temp          float64  `json:"temp"`
	Wind          float64  `json:"wind"`
	WindDirection float64  `json:"wind_direction"`
	WeatherCode   int      `json:"weather_code"`
	Humidity      *float64 `json:"humidity"`
	Pressure      *float64 `json:"pressure"`
	Image         string   `json:"image"`
	Status        string   `json:"status"`
	StatusColor   string   `json:"status_color"`
}

// CurrentWeather is the current_weather block of an Open-Meteo forecast
// response.
type CurrentWeather struct {
	Temperature   float64 `json:"temperature"`
	WindSpeed     float64 `json:"windspeed"`
	WindDirection float64 `json:"winddirection"`
	WeatherCode   int     `json:"weathercode"`
}

// HourlySeries holds the hourly sample arrays requested from Open-Meteo.
// Either array may be empty or missing entirely.
type HourlySeries struct {
	RelativeHumidity []float64 `json:"relativehumidity_2m"`
	PressureMSL      []float64 `json:"pressure_msl"`
}

// Forecast is the parsed upstream forecast for one coordinate pair.
type Forecast struct {
	CurrentWeather CurrentWeather `json:"current_weather"`
	Hourly         HourlySeries   `json:"hourly"`
}
