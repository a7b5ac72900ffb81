package feature

const tractsGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {"type": "Polygon", "coordinates": [[[-122.35,47.60],[-122.33,47.60],[-122.33,47.62],[-122.35,47.62],[-122.35,47.60]]]},
      "properties": {
        "GEOID": "53033008100", "NAMELSAD": "Census Tract 81", "NEIGHBORHOOD": "Belltown",
        "MEDIAN_RENT": 1850, "BURDEN_30": 41.5, "BURDEN_50": null,
        "RENT_SERIES": "[{\"year\":2015,\"value\":1500},{\"year\":2019,\"value\":1850}]",
        "GRAPI_LT20": 30, "GRAPI_50_PLUS": 18.5
      }
    },
    {
      "type": "Feature",
      "geometry": {"type": "Polygon", "coordinates": [[[-122.33,47.60],[-122.31,47.60],[-122.31,47.62],[-122.33,47.62],[-122.33,47.60]]]},
      "properties": {
        "geoid": "53033008200", "name": "82", "neighborhood": "Capitol Hill",
        "median_rent": "1,600", "RENT_SERIES": [{"year": 2019, "value": 1600}]
      }
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [-122.3, 47.6]},
      "properties": {"NAME": "no id"}
    }
  ]
}`

const zonesGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "id": "mha-1",
      "geometry": {"type": "Polygon", "coordinates": [[[-122.35,47.60],[-122.31,47.60],[-122.31,47.62],[-122.35,47.62],[-122.35,47.60]]]},
      "properties": {"ZONE_NAME": "Downtown core", "MHA_TIER": "M2", "CATEGORY": "Commercial"}
    }
  ]
}`

const burdenCSV = `year,tenure,race,age,burden_30,burden_50
2018,Renter,All,All,44.0,21.0
2019,Renter,All,All,45.5,22.5
2019,Renter,Asian,All,38.0,17.0
2020,,,,,
`

const incomeCSV = `year,bracket,share
2019,<$25k,18.2
2019,$100k+,30.1
2020,<$25k,17.0
,$25k-$50k,1
`
