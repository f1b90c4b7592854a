package buffer

import (
	"errors"
	"reflect"
	"strconv"
	"testing"
)

func TestReshapeRows(t *testing.T) {
	flat := []string{"1", "2", "3", "4", "5", "6"}
	tbl, err := Reshape(flat, 3)
	if err != nil {
		t.Fatalf("Reshape failed: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tbl.Len())
	}
	if got := tbl.Text(","); got != "1,2,3\n4,5,6" {
		t.Errorf("Text() = %q", got)
	}
	if got := tbl.Column(1); !reflect.DeepEqual(got, []string{"2", "5"}) {
		t.Errorf("Column(1) = %v", got)
	}
	if got := tbl.Flatten(); !reflect.DeepEqual(got, flat) {
		t.Errorf("Flatten() = %v", got)
	}
}

func TestReshapeRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		flat []string
		cols int
	}{
		{"not a multiple", []string{"1", "2", "3", "4", "5"}, 2},
		{"zero columns", []string{"1"}, 0},
		{"negative columns", nil, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reshape(tt.flat, tt.cols)
			var se *ShapeError
			if !errors.As(err, &se) {
				t.Fatalf("expected *ShapeError, got %v", err)
			}
			if se.Len != len(tt.flat) || se.Cols != tt.cols {
				t.Errorf("ShapeError = %+v", se)
			}
		})
	}
}

func TestReshapeEmpty(t *testing.T) {
	tbl, err := ReshapeText("  ", 5)
	if err != nil {
		t.Fatalf("ReshapeText failed: %v", err)
	}
	if tbl.Len() != 0 || tbl.Text("\t") != "" {
		t.Errorf("expected empty table, got %+v", tbl)
	}
}

func TestReshapeFullBuffer(t *testing.T) {
	// 2500 points of VOLT,CURR,RES,TIME,STAT
	flat := make([]string, 2500*5)
	for i := range flat {
		flat[i] = strconv.Itoa(i)
	}
	tbl, err := Reshape(flat, 5)
	if err != nil {
		t.Fatalf("Reshape failed: %v", err)
	}
	if tbl.Len() != 2500 {
		t.Fatalf("Len() = %d, want 2500", tbl.Len())
	}
	if got := tbl.Rows[2499][4]; got != "12499" {
		t.Errorf("last value = %q", got)
	}
	if cols := tbl.Columns(); len(cols) != 5 || len(cols[0]) != 2500 {
		t.Errorf("Columns() shape = %d x %d", len(cols), len(cols[0]))
	}
}

func TestReshapeTrimsPadding(t *testing.T) {
	tbl, err := ReshapeText(" +1.000E-01, -2.5E-06 ,0.01\n", 3)
	if err != nil {
		t.Fatalf("ReshapeText failed: %v", err)
	}
	want := []string{"+1.000E-01", "-2.5E-06", "0.01"}
	if got := tbl.Flatten(); !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten() = %q, want %q", got, want)
	}
}
