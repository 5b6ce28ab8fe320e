// Package plot draws solution charts as images with gonum/plot.
//
// A [Figure] shows the exact solution, when one is known, as a continuous
// black line and every method as a marker series at the grid points:
//
//	fig, err := plot.FromResult(result, plot.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	err = fig.Save("harmonic.png")
//
// The output format follows the file extension (png, svg, pdf, eps, jpg).
package plot
