package nearest

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/fuzzymatch/internal/frame"
)

// FromFrame extracts identified coordinates from a tabular frame. Rows
// with an empty or non-numeric coordinate are skipped.
func FromFrame(f *frame.Frame, idField, latField, lonField string) ([]Point, error) {
	ids, err := f.Column(idField)
	if err != nil {
		return nil, err
	}
	lats, err := f.Column(latField)
	if err != nil {
		return nil, err
	}
	lons, err := f.Column(lonField)
	if err != nil {
		return nil, err
	}

	points := make([]Point, 0, f.Len())
	for i := range ids {
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(lats[i]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(lons[i]), 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		points = append(points, Point{ID: strings.TrimSpace(ids[i]), Lat: lat, Lon: lon})
	}

	return points, nil
}

// FromShapefile reads a point shapefile and identifies each point by the
// named attribute field. Non-point shapes are an error.
func FromShapefile(path, idField string) ([]Point, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "nearest: open shapefile")
	}
	defer r.Close()

	idIdx := -1
	for i, field := range r.Fields() {
		if strings.EqualFold(field.String(), idField) {
			idIdx = i
			break
		}
	}
	if idIdx < 0 {
		return nil, eris.Errorf("nearest: shapefile has no attribute field %q", idField)
	}

	var points []Point
	for r.Next() {
		row, shape := r.Shape()

		point, ok := shape.(*shp.Point)
		if !ok {
			return nil, eris.Errorf("nearest: shape %d is %T, want point", row, shape)
		}

		points = append(points, Point{
			ID:  strings.TrimSpace(r.ReadAttribute(row, idIdx)),
			Lat: point.Y,
			Lon: point.X,
		})
	}
	if err := r.Err(); err != nil {
		return nil, eris.Wrap(err, "nearest: read shapefile")
	}

	return points, nil
}
