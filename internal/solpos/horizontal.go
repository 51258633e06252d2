package solpos

import "math"

// Horizontal converts declination and hour angle to elevation and azimuth
// for an observer at latitude. All inputs are in radians.
func Horizontal(latitude, declination, hourAngle float64) HorizontalPosition {
	sinLat, cosLat := math.Sincos(latitude)
	sinHA, cosHA := math.Sincos(hourAngle)

	az := radToDeg(math.Atan2(-sinHA, cosLat*math.Tan(declination)-sinLat*cosHA))
	if az < 0 {
		az += 360
	}
	el := radToDeg(math.Asin(cosLat*math.Cos(declination)*cosHA + sinLat*math.Sin(declination)))

	return HorizontalPosition{
		Elevation: el,
		Azimuth:   az,
		Zenith:    90 - el,
	}
}

// SolarTime converts an hour angle in degrees to decimal hours, noon = 12.
func SolarTime(hourAngleDeg float64) float64 {
	return (180 + hourAngleDeg) / 15
}
