package forecast

// Two days for Mountain View as the daily forecast API returns them.
const sampleForecast = `{
  "city": {"id": 5375480, "name": "Mountain View", "coord": {"lat": 37.3861, "lon": -122.0839}, "country": "US"},
  "cod": "200",
  "cnt": 2,
  "list": [
    {
      "dt": 1417780800,
      "temp": {"day": 14.2, "min": 9.5, "max": 16.1, "night": 9.5, "eve": 12.3, "morn": 10.1},
      "pressure": 1012.4,
      "humidity": 81,
      "weather": [{"id": 500, "main": "Rain", "description": "light rain", "icon": "10d"}],
      "speed": 3.6,
      "deg": 200
    },
    {
      "dt": 1417867200,
      "temp": {"day": 15.0, "min": 0, "max": 17.3},
      "pressure": 1016.9,
      "humidity": 70,
      "weather": [{"id": 800, "main": "Clear", "description": "sky is clear", "icon": "01d"}],
      "speed": 1.9,
      "deg": 310
    }
  ]
}`
