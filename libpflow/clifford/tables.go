package clifford

import "math"

type tables struct {
	img      [NumElements][3]Pauli // img[c][axis] == c·P·c†
	mul      [NumElements][NumElements]Clifford
	inv      [NumElements]Clifford
	words    [NumElements][]Gate
	matrices [NumElements][2][2]complex128
}

var gTables = buildTables()

func buildTables() *tables {
	T := &tables{}

	for c := Clifford(0); c < NumElements; c++ {
		code := byte(c)
		xImg := Pauli{
			Axis: Axis(code / 8),
			Neg:  (code/4)%2 == 1,
		}
		zImg := Pauli{
			Axis: otherAxes(xImg.Axis)[(code/2)%2],
			Neg:  code%2 == 1,
		}

		// Y = iXZ, so C·Y·C† = i·(C·X·C†)·(C·Z·C†) = -sx·sz·levi(x,z)·P_y
		sign := -levi(xImg.Axis, zImg.Axis)
		if xImg.Neg {
			sign = -sign
		}
		if zImg.Neg {
			sign = -sign
		}
		yImg := Pauli{
			Axis: 3 - xImg.Axis - zImg.Axis,
			Neg:  sign < 0,
		}

		T.img[c] = [3]Pauli{xImg, yImg, zImg}
	}

	conj := func(c Clifford, p Pauli) Pauli {
		img := T.img[c][p.Axis]
		if p.Neg {
			img.Neg = !img.Neg
		}
		return img
	}

	for a := Clifford(0); a < NumElements; a++ {
		for b := Clifford(0); b < NumElements; b++ {
			xImg := conj(a, conj(b, PauliX))
			zImg := conj(a, conj(b, PauliZ))
			ab, ok := FromImages(xImg, zImg)
			if !ok {
				panic("clifford: composition left the group")
			}
			T.mul[a][b] = ab
		}
	}

	for a := Clifford(0); a < NumElements; a++ {
		for b := Clifford(0); b < NumElements; b++ {
			if T.mul[a][b] == I {
				T.inv[a] = b
				break
			}
		}
	}

	// Breadth-first walk over the Cayley graph generated by H and S yields shortest words and matrices.
	r := complex(1/math.Sqrt2, 0)
	gateMatrix := map[Gate][2][2]complex128{
		GateH: {{r, r}, {r, -r}},
		GateS: {{1, 0}, {0, 1i}},
	}
	gateElem := map[Gate]Clifford{
		GateH: H,
		GateS: S,
	}

	var seen [NumElements]bool
	seen[I] = true
	T.matrices[I] = [2][2]complex128{{1, 0}, {0, 1}}
	queue := []Clifford{I}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, g := range []Gate{GateH, GateS} {
			next := T.mul[gateElem[g]][c]
			if seen[next] {
				continue
			}
			seen[next] = true
			word := make([]Gate, len(T.words[c]), len(T.words[c])+1)
			copy(word, T.words[c])
			T.words[next] = append(word, g)
			T.matrices[next] = matMul(gateMatrix[g], T.matrices[c])
			queue = append(queue, next)
		}
	}

	return T
}

func matMul(A, B [2][2]complex128) [2][2]complex128 {
	var C [2][2]complex128
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			C[i][j] = A[i][0]*B[0][j] + A[i][1]*B[1][j]
		}
	}
	return C
}
