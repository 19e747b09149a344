package bml

// shear writes the one-step diagonal shift of src into dst: the cell at
// (i, j) takes the value previously at ((i-1) mod N, (j+1) mod N). Empty
// cells shift like any other.
func shear(src, dst *Grid) {
	n := src.Side()
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			dst.Set(row, col, src.At(src.wrap(row-1, col+1)))
		}
	}
}
