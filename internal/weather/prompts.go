package weather

import (
	"fmt"
	"math"
	"strings"

	"github.com/i474232898/weather-insight/internal/common"
)

// PromptInput bundles the already-fetched datasets the prompt builders draw
// from. Builders are pure; they never trigger I/O.
type PromptInput struct {
	Current CurrentConditions
	Air     *AirQualitySample
	Daily   DailyDigest
	Hourly  ForecastSeries
	Units   Units
}

// Formatting contract shared by all builders: temperatures rounded to the
// nearest whole unit, visibility in kilometers to one decimal, percentages as
// integers.
func roundTemp(v float64) int {
	return int(math.Round(v))
}

func visibilityKm(meters int) string {
	return fmt.Sprintf("%.1f", float64(meters)/1000)
}

// OverviewPrompt asks for a summary of current conditions plus the 5-day
// outlook and one or two activity suggestions, within 100 words.
func OverviewPrompt(in PromptInput) string {
	cur := in.Current
	sym := in.Units.Symbol()

	var b strings.Builder
	fmt.Fprintf(&b, "Given the current weather in %s, %s:\n", cur.PlaceName, cur.Country)
	fmt.Fprintf(&b, "Temperature: %d°%s\n", roundTemp(cur.Temp), sym)
	fmt.Fprintf(&b, "Description: %s\n", cur.Description)
	fmt.Fprintf(&b, "Humidity: %d%%\n", cur.Humidity)
	fmt.Fprintf(&b, "Wind Speed: %g m/s\n", cur.WindSpeed)
	fmt.Fprintf(&b, "Pressure: %g hPa\n", cur.Pressure)
	fmt.Fprintf(&b, "Visibility: %s km\n", visibilityKm(cur.VisibilityMeters))
	fmt.Fprintf(&b, "Local Time: %s\n", FormatClock(cur.ObservedAt, cur.TimezoneOffset))
	fmt.Fprintf(&b, "Sunrise: %s\n", FormatClock(cur.Sunrise, cur.TimezoneOffset))
	fmt.Fprintf(&b, "Sunset: %s\n", FormatClock(cur.Sunset, cur.TimezoneOffset))
	if in.Air != nil {
		fmt.Fprintf(&b, "Air Quality Index (AQI): %d (%s)\n", in.Air.Index, AqiLabel(in.Air.Index))
	}

	b.WriteString("\nAnd a 5-day forecast with daily temperatures (approximately midday):\n")
	for _, day := range in.Daily {
		fmt.Fprintf(&b, "- %s: Temp %d°%s, Feels %d°%s, Min %d°%s, Max %d°%s (%s)\n",
			FormatDate(day.Epoch, cur.TimezoneOffset),
			roundTemp(day.Temp), sym, roundTemp(day.FeelsLike), sym,
			roundTemp(day.TempMin), sym, roundTemp(day.TempMax), sym,
			day.Description)
	}

	b.WriteString("\nPlease provide a brief, engaging summary of the overall weather situation " +
		"for the next few days and suggest one or two suitable activities for someone in this " +
		"location. Keep it concise, within 100 words.")
	return b.String()
}

// hourlyPromptSamples is the number of 3-hour samples the hourly builder
// walks: 16 samples cover the next 48 hours.
const hourlyPromptSamples = 16

// HourlyPrompt asks for time-block-specific activity guidance over the next
// 48 hours, within 150 words.
func HourlyPrompt(in PromptInput) string {
	cur := in.Current

	var b strings.Builder
	fmt.Fprintf(&b, "Given the hourly weather forecast for %s, %s over the next 48 hours:\n",
		cur.PlaceName, cur.Country)

	samples := in.Hourly
	if len(samples) > hourlyPromptSamples {
		samples = samples[:hourlyPromptSamples]
	}
	for _, h := range samples {
		fmt.Fprintf(&b, "%s: Temp %d°%s, Feels %d°%s, %s, Wind %g m/s\n",
			FormatHour(h.Epoch, cur.TimezoneOffset),
			roundTemp(h.Temp), in.Units.Symbol(), roundTemp(h.FeelsLike), in.Units.Symbol(),
			h.Description, h.WindSpeed)
	}

	b.WriteString("\nPlease suggest specific outdoor activities or considerations for each major " +
		"time block (e.g., morning, afternoon, evening) over the next day or two, based on " +
		"temperature, conditions, and wind. Provide concise, actionable advice. If conditions " +
		"are unfavorable, suggest indoor alternatives. Keep it under 150 words.")
	return b.String()
}

// AlertPrompt asks the model to flag any breach of the fixed extreme-weather
// thresholds, or state that none was found.
func AlertPrompt(in PromptInput) string {
	cur := in.Current
	sym := in.Units.Symbol()

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following weather data for %s, %s and its 5-day forecast. "+
		"Identify any potentially extreme weather conditions (e.g., unusually high/low "+
		"temperatures, very strong winds, heavy precipitation). If extreme conditions are "+
		"present, provide a brief alert message and practical safety advice. If no extreme "+
		"conditions are found, state that.\n", cur.PlaceName, cur.Country)
	fmt.Fprintf(&b, "Current Weather: Temp %d°%s, Description: %s, Wind: %g m/s, Visibility: %s km.\n",
		roundTemp(cur.Temp), sym, cur.Description, cur.WindSpeed, visibilityKm(cur.VisibilityMeters))
	b.WriteString("5-Day Forecast:\n")
	for _, day := range in.Daily {
		fmt.Fprintf(&b, "- %s: Temp %d°%s, Description: %s, Wind: %g m/s\n",
			FormatDate(day.Epoch, cur.TimezoneOffset), roundTemp(day.Temp), sym,
			day.Description, day.WindSpeed)
	}
	if in.Air != nil {
		fmt.Fprintf(&b, "Current Air Quality Index (AQI): %d (%s)\n", in.Air.Index, AqiLabel(in.Air.Index))
	}

	b.WriteString("\nConsider \"extreme\" for:\n" +
		"- Temperatures above 35°C (95°F) or below -5°C (23°F)\n" +
		"- Wind speed above 10 m/s (22 mph)\n" +
		"- Weather descriptions indicating heavy rain, heavy snow, thunderstorm, tornado, hurricane.\n" +
		"- AQI above 3 (Poor or Very Poor).\n" +
		"Provide a concise alert.")
	return b.String()
}

// clothingOutlookSamples is how many upcoming samples the clothing builder
// summarizes.
const clothingOutlookSamples = 3

// ClothingPrompt asks for layering, accessory and footwear guidance for the
// current conditions plus the next few hours, within 70 words.
func ClothingPrompt(in PromptInput) string {
	cur := in.Current
	sym := in.Units.Symbol()

	var b strings.Builder
	b.WriteString("Given the current weather conditions:\n")
	fmt.Fprintf(&b, "Temperature: %d°%s\n", roundTemp(cur.Temp), sym)
	fmt.Fprintf(&b, "Feels Like: %d°%s\n", roundTemp(cur.FeelsLike), sym)
	fmt.Fprintf(&b, "Description: %s\n", cur.Description)
	fmt.Fprintf(&b, "Humidity: %d%%\n", cur.Humidity)
	fmt.Fprintf(&b, "Wind Speed: %g m/s\n", cur.WindSpeed)

	b.WriteString("\nAnd a brief outlook for the next few hours (from hourly forecast):\n")
	samples := in.Hourly
	if len(samples) > clothingOutlookSamples {
		samples = samples[:clothingOutlookSamples]
	}
	for _, h := range samples {
		fmt.Fprintf(&b, "- %s: %d°%s (%s)\n",
			FormatClock(h.Epoch, cur.TimezoneOffset), roundTemp(h.Temp), sym, h.Description)
	}

	fmt.Fprintf(&b, "\nPlease suggest appropriate clothing for someone spending time outdoors "+
		"today in %s. Consider layers, accessories (umbrella, hat), and footwear based on the "+
		"conditions. Be concise, within 70 words.", cur.PlaceName)
	return b.String()
}

// extremeKeywords are description fragments treated as extreme on their own.
var extremeKeywords = []string{"heavy rain", "heavy snow", "thunderstorm", "tornado", "hurricane"}

// DetectExtremes applies the alert thresholds locally and returns a short
// description of every breach found, in a stable order. Used for logging; the
// narrative text itself still comes from the model.
func DetectExtremes(in PromptInput) []string {
	var breaches []string

	hot, cold := 35.0, -5.0
	if in.Units == UnitsImperial {
		hot, cold = 95.0, 23.0
	}

	if in.Current.Temp > hot {
		breaches = append(breaches, fmt.Sprintf("temperature %d°%s above %g°%s",
			roundTemp(in.Current.Temp), in.Units.Symbol(), hot, in.Units.Symbol()))
	}
	if in.Current.Temp < cold {
		breaches = append(breaches, fmt.Sprintf("temperature %d°%s below %g°%s",
			roundTemp(in.Current.Temp), in.Units.Symbol(), cold, in.Units.Symbol()))
	}
	if in.Current.WindSpeed > 10 {
		breaches = append(breaches, fmt.Sprintf("wind speed %g m/s above 10 m/s", in.Current.WindSpeed))
	}

	descs := []string{in.Current.Description}
	for _, day := range in.Daily {
		descs = append(descs, day.Description)
	}
	for _, d := range descs {
		if common.HasAny(d, extremeKeywords...) {
			breaches = append(breaches, fmt.Sprintf("severe conditions reported: %s", d))
			break
		}
	}

	if in.Air != nil && AqiSevere(in.Air.Index) {
		breaches = append(breaches, fmt.Sprintf("air quality index %d (%s)",
			in.Air.Index, AqiLabel(in.Air.Index)))
	}

	return breaches
}
