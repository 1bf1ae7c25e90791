// Package meshio writes two mesh formats: an ASCII OFF polygon soup and
// a per-cell colored ASCII PLY dump.
package meshio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/archform/cellcomplex/kernel"
	"github.com/archform/cellcomplex/labeler"
	"github.com/archform/cellcomplex/surface"
)

// WriteOFF writes soup in ASCII OFF format: a header line, the vertex
// and face counts, then vertex rows and face rows.
func WriteOFF(w io.Writer, soup *surface.Soup) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, "OFF"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "%d %d 0\n", len(soup.Vertices), len(soup.Faces)); err != nil {
		return err
	}
	for _, v := range soup.Vertices {
		f := v.Float64()
		if _, err := fmt.Fprintf(bw, "%g %g %g\n", f.X, f.Y, f.Z); err != nil {
			return err
		}
	}
	for _, face := range soup.Faces {
		if _, err := fmt.Fprintf(bw, "%d", len(face)); err != nil {
			return err
		}
		for _, idx := range face {
			if _, err := fmt.Fprintf(bw, " %d", idx); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(bw); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// RGB is a per-face vertex color for PLY emission.
type RGB struct {
	R, G, B uint8
}

// WritePLY writes an ASCII PLY with an x/y/z vertex position, a
// red/green/blue uchar per vertex, and a vertex_index face list, for a
// per-cell colored dump. colors must have one entry per vertex in
// soup.Vertices, or be nil (all vertices emitted white).
func WritePLY(w io.Writer, soup *surface.Soup, colors []RGB) error {
	if colors != nil && len(colors) != len(soup.Vertices) {
		return fmt.Errorf("meshio: %d colors for %d vertices", len(colors), len(soup.Vertices))
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "ply")
	fmt.Fprintln(bw, "format ascii 1.0")
	fmt.Fprintf(bw, "element vertex %d\n", len(soup.Vertices))
	fmt.Fprintln(bw, "property float x")
	fmt.Fprintln(bw, "property float y")
	fmt.Fprintln(bw, "property float z")
	fmt.Fprintln(bw, "property uchar red")
	fmt.Fprintln(bw, "property uchar green")
	fmt.Fprintln(bw, "property uchar blue")
	fmt.Fprintf(bw, "element face %d\n", len(soup.Faces))
	fmt.Fprintln(bw, "property list uchar int vertex_index")
	fmt.Fprintln(bw, "end_header")

	for i, v := range soup.Vertices {
		f := v.Float64()
		c := RGB{R: 255, G: 255, B: 255}
		if colors != nil {
			c = colors[i]
		}
		if _, err := fmt.Fprintf(bw, "%g %g %g %d %d %d\n", f.X, f.Y, f.Z, c.R, c.G, c.B); err != nil {
			return err
		}
	}
	for _, face := range soup.Faces {
		if _, err := fmt.Fprintf(bw, "%d", len(face)); err != nil {
			return err
		}
		for _, idx := range face {
			if _, err := fmt.Fprintf(bw, " %d", idx); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(bw); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadOFFTriangles reads an ASCII OFF mesh and fan-triangulates every
// face, for use as labeler.DistanceLabeler's reference mesh.
func ReadOFFTriangles(r io.Reader) ([]labeler.Triangle, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	if !sc.Scan() {
		return nil, fmt.Errorf("meshio: empty OFF file")
	}
	if sc.Text() != "OFF" {
		return nil, fmt.Errorf("meshio: missing OFF header")
	}

	if !sc.Scan() {
		return nil, fmt.Errorf("meshio: missing OFF counts line")
	}
	var nv, nf, ne int
	if _, err := fmt.Sscanf(sc.Text(), "%d %d %d", &nv, &nf, &ne); err != nil {
		return nil, fmt.Errorf("meshio: parsing OFF counts: %w", err)
	}

	verts := make([]kernel.Vec3F, nv)
	for i := 0; i < nv; i++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("meshio: truncated vertex list at %d/%d", i, nv)
		}
		var x, y, z float64
		if _, err := fmt.Sscanf(sc.Text(), "%g %g %g", &x, &y, &z); err != nil {
			return nil, fmt.Errorf("meshio: parsing vertex %d: %w", i, err)
		}
		verts[i] = kernel.Vec3F{X: x, Y: y, Z: z}
	}

	var tris []labeler.Triangle
	for i := 0; i < nf; i++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("meshio: truncated face list at %d/%d", i, nf)
		}
		fields := splitFields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		var k int
		fmt.Sscanf(fields[0], "%d", &k)
		if len(fields) < k+1 {
			return nil, fmt.Errorf("meshio: face %d declares %d corners but has %d fields", i, k, len(fields)-1)
		}
		idx := make([]int, k)
		for j := 0; j < k; j++ {
			fmt.Sscanf(fields[j+1], "%d", &idx[j])
		}
		for j := 1; j+1 < k; j++ {
			tris = append(tris, labeler.Triangle{A: verts[idx[0]], B: verts[idx[j]], C: verts[idx[j+1]]})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return tris, nil
}

func splitFields(line string) []string {
	var fields []string
	var cur []rune
	for _, r := range line {
		if r == ' ' || r == '\t' {
			if len(cur) > 0 {
				fields = append(fields, string(cur))
				cur = nil
			}
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		fields = append(fields, string(cur))
	}
	return fields
}
