package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeShape(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"Circle", ShapeRound},
		{" sphere ", ShapeRound},
		{"ROUND", ShapeRound},
		{"cigar", ShapeCylindrical},
		{"Cylinder", ShapeCylindrical},
		{"", ShapeOther},
		{"Unknown", ShapeOther},
		{"other", ShapeOther},
		{"Flash", ShapeFlashing},
		{"flare", ShapeFlashing},
		{"Changing", ShapeVariable},
		{"changed", ShapeVariable},
		{"Triangle", ShapeTriangular},
		{"triangular", ShapeTriangular},
		{"disk", "Disk"},
		{"  fireball ", "Fireball"},
		{"light", "Light"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeShape(tt.raw))
		})
	}
}

func TestIsShapeCategory(t *testing.T) {
	assert.True(t, IsShapeCategory(ShapeVariable))
	assert.False(t, IsShapeCategory("Disk"))
}
