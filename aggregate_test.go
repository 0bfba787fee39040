package ctnsum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func aggregateRows(t *testing.T, rows ...[]string) *AggregationState {
	t.Helper()
	state, err := Aggregate(NewGrid(rows), 0)
	require.NoError(t, err)
	return state
}

func TestAggregate_Classification(t *testing.T) {
	tests := []struct {
		name    string
		row     []string
		check   func(t *testing.T, s *AggregationState)
		total   int
		dropped int
	}{
		{
			name: "UPS note beats warehouse code",
			row:  lineItem("R1", "P1", "10", "ANY5", "UPS Express"),
			check: func(t *testing.T, s *AggregationState) {
				assert.Equal(t, 10, s.Destination("UPS"))
				assert.Equal(t, 0, s.Destination("ANY5"))
			},
			total: 10,
		},
		{
			name: "self pickup with references",
			row:  lineItem("R1", "R2", "5", "YYZ3", "客户自提"),
			check: func(t *testing.T, s *AggregationState) {
				assert.Equal(t, 5, s.Detail(TypeSelf, "R1", "R2"))
				assert.Equal(t, 0, s.Destination("YYZ3"), "self pickup wins over warehouse")
			},
			total: 5,
		},
		{
			name:    "self pickup without reference2 is dropped",
			row:     lineItem("R1", "", "5", "YYZ3", "自提"),
			check:   func(t *testing.T, s *AggregationState) { assert.Equal(t, 0, s.Destination("YYZ3")) },
			dropped: 1,
		},
		{
			name: "truck delivery with long warehouse code",
			row:  lineItem("A", "B", "3", "LONGCODE", "卡车派送"),
			check: func(t *testing.T, s *AggregationState) {
				assert.Equal(t, 3, s.Detail(TypePD, "A", "B"))
				assert.Equal(t, 0, s.Destination("LONGCODE"))
			},
			total: 3,
		},
		{
			name:    "truck delivery without references is dropped",
			row:     lineItem("", "B", "3", "LONGCODE", "卡车派送"),
			check:   func(t *testing.T, s *AggregationState) { assert.Equal(t, 0, s.Detail(TypePD, "", "B")) },
			dropped: 1,
		},
		{
			name: "truck marker with short warehouse code goes to warehouse",
			row:  lineItem("A", "B", "4", "YYZ3", "卡车派送"),
			check: func(t *testing.T, s *AggregationState) {
				assert.Equal(t, 4, s.Destination("YYZ3"))
				assert.Equal(t, 0, s.Detail(TypePD, "A", "B"))
			},
			total: 4,
		},
		{
			name:  "short warehouse code",
			row:   lineItem("R1", "P1", "7", "YYZ3", ""),
			check: func(t *testing.T, s *AggregationState) { assert.Equal(t, 7, s.Destination("YYZ3")) },
			total: 7,
		},
		{
			name:  "warehouse length counts runes",
			row:   lineItem("R1", "P1", "2", "多伦多仓", ""),
			check: func(t *testing.T, s *AggregationState) { assert.Equal(t, 2, s.Destination("多伦多仓")) },
			total: 2,
		},
		{
			name:  "truck fallback without warehouse",
			row:   lineItem("A", "B", "6", "", "卡车派送 到门"),
			check: func(t *testing.T, s *AggregationState) { assert.Equal(t, 6, s.Detail(TypePD, "A", "B")) },
			total: 6,
		},
		{
			name:    "long warehouse without marker matches nothing",
			row:     lineItem("A", "B", "6", "LONGCODE", "pallet"),
			check:   func(t *testing.T, s *AggregationState) { assert.Equal(t, 0, s.Destination("LONGCODE")) },
			dropped: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := aggregateRows(t, tt.row)
			tt.check(t, s)
			assert.Equal(t, tt.total, s.Total)
			assert.Equal(t, tt.dropped, s.Dropped)
		})
	}
}

func TestAggregate_SkipPolicy(t *testing.T) {
	rows := [][]string{
		lineItem("R1", "P1", "0", "YYZ3", ""),
		lineItem("R1", "P1", "-3", "YYZ3", ""),
		lineItem("R1", "P1", "abc", "YYZ3", ""),
		lineItem("R1", "P1", "", "YYZ3", ""),
		lineItem("R1", "P1", "=SUM(D1:D4)", "YYZ3", ""),
		lineItem("R1", "P1", "Total 40", "YYZ3", ""),
		lineItem("R1", "P1", "TOTAL", "YYZ3", ""),
		{"R1", "x", "P1"},
		lineItem("R1", "P1", "8", "YYZ3", ""),
	}
	s := aggregateRows(t, rows...)
	assert.Equal(t, 8, s.Destination("YYZ3"))
	assert.Equal(t, 8, s.Total)
	assert.Equal(t, 1, s.Rows)
	assert.Equal(t, 0, s.Dropped, "skipped rows are not counted as dropped")
}

func TestAggregate_QuantityPrefix(t *testing.T) {
	s := aggregateRows(t,
		lineItem("R1", "P1", "12.0", "YYZ3", ""),
		lineItem("R1", "P1", " 3 ctns", "YYZ3", ""),
	)
	assert.Equal(t, 15, s.Destination("YYZ3"))
}

func TestAggregate_AccumulatesBuckets(t *testing.T) {
	s := aggregateRows(t,
		lineItem("R1", "P1", "2", "YYZ3", ""),
		lineItem("R2", "P2", "3", "YYZ3", ""),
		lineItem("R1", "P1", "4", "", "自提"),
		lineItem("R1", "P1", "5", "", "自提"),
		lineItem("R1", "P1", "6", "UPS1", "UPS"),
	)
	assert.Equal(t, 5, s.Destination("YYZ3"))
	assert.Equal(t, 9, s.Detail(TypeSelf, "R1", "P1"))
	assert.Equal(t, 6, s.Destination("UPS"))
	assert.Equal(t, 20, s.Total)
	assert.Equal(t, 5, s.Rows)
}

func TestAggregate_StopsAfterBlankRun(t *testing.T) {
	rows := [][]string{lineItem("R1", "P1", "1", "YYZ3", "")}
	for i := 0; i < 12; i++ {
		rows = append(rows, []string{"", " "})
	}
	rows = append(rows, lineItem("R2", "P2", "50", "YYZ3", ""))

	s := aggregateRows(t, rows...)
	assert.Equal(t, 1, s.Destination("YYZ3"), "rows after the blank run are never read")
	assert.Equal(t, 1, s.Total)
}

func TestAggregate_ShortBlankRunContinues(t *testing.T) {
	rows := [][]string{lineItem("R1", "P1", "1", "YYZ3", "")}
	for i := 0; i < 9; i++ {
		rows = append(rows, []string{})
	}
	rows = append(rows, lineItem("R2", "P2", "50", "YYZ3", ""))

	s := aggregateRows(t, rows...)
	assert.Equal(t, 51, s.Total)
}

func TestAggregate_EmptyRowLimitOption(t *testing.T) {
	rows := [][]string{{}, {}, lineItem("R1", "P1", "1", "YYZ3", "")}
	state, err := NewProcessor(WithEmptyRowLimit(2)).Aggregate(NewGrid(rows), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, state.Total)
}

func TestAggregate_StartsAtDataRow(t *testing.T) {
	rows := [][]string{
		lineItem("R0", "P0", "100", "YYZ3", ""),
		lineItem("R1", "P1", "1", "YYZ3", ""),
	}
	state, err := Aggregate(NewGrid(rows), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Total)

	state, err = Aggregate(NewGrid(rows), 5)
	require.NoError(t, err)
	assert.Equal(t, 0, state.Total)
}

func TestAggregate_CustomMarkers(t *testing.T) {
	p := NewProcessor(WithSelfPickupMarker("PICKUP"), WithTruckMarker("TRUCK"))
	state, err := p.Aggregate(NewGrid([][]string{
		lineItem("A", "B", "2", "", "customer PICKUP"),
		lineItem("A", "B", "3", "LONGCODE", "TRUCK"),
		lineItem("A", "B", "4", "", "自提"),
	}), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Detail(TypeSelf, "A", "B"))
	assert.Equal(t, 3, state.Detail(TypePD, "A", "B"))
	assert.Equal(t, 1, state.Dropped)
}

func TestAggregate_LogsDroppedRows(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	p := NewProcessor(WithLogger(zap.New(core)))
	_, err := p.Aggregate(NewGrid([][]string{
		lineItem("A", "B", "6", "LONGCODE", "pallet"),
		lineItem("A", "", "6", "", "自提"),
	}), 0)
	require.NoError(t, err)

	dropped := logs.FilterMessage("Row dropped from aggregation").All()
	require.Len(t, dropped, 2)
	assert.Equal(t, int64(1), dropped[0].ContextMap()["row"])
	assert.Equal(t, "", dropped[0].ContextMap()["rule"])
	assert.Equal(t, "self-pickup", dropped[1].ContextMap()["rule"])
}

func TestAggregate_InvalidRules(t *testing.T) {
	p := NewProcessor(WithRules([]Rule{{Name: "bad", When: "note +", Kind: KindDestination}}))
	_, err := p.Aggregate(NewGrid(nil), 0)
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"10", 10, true},
		{" 7 ", 7, true},
		{"+4", 4, true},
		{"-2", -2, true},
		{"12.9", 12, true},
		{"3ctn", 3, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-", 0, false},
		{"99999999999", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseQuantity(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestExtractLineItem_SubtotalCaseFolding(t *testing.T) {
	lower := cases.Lower(language.Und)
	for _, qty := range []string{"SubTotal", "Grand TOTAL 40", "total"} {
		_, ok := extractLineItem(0, NewGrid([][]string{lineItem("R", "P", qty, "YYZ3", "")}).Rows[0], lower)
		assert.False(t, ok, "quantity %q", qty)
	}
	item, ok := extractLineItem(4, NewGrid([][]string{lineItem("R", "P", "12", "YYZ3", "自提")}).Rows[0], lower)
	require.True(t, ok)
	assert.Equal(t, LineItem{Row: 4, Reference1: "R", Reference2: "P", CTN: 12, WarehouseCode: "YYZ3", Note: "自提"}, item)
}

func TestAggregate_EmptyMarkersKeepDefaults(t *testing.T) {
	p := NewProcessor(WithSelfPickupMarker(""), WithTruckMarker(""))
	assert.Equal(t, DefaultSelfPickupMarker, p.opts.selfPickupMarker)
	assert.Equal(t, DefaultTruckMarker, p.opts.truckMarker)

	state, err := p.Aggregate(NewGrid([][]string{
		lineItem("A", "B", "5", "YYZ3", "pallet"),
		lineItem("A", "B", "2", "LONGCODE", "floor loaded"),
	}), 0)
	require.NoError(t, err)
	assert.Equal(t, 5, state.Destination("YYZ3"), "an empty marker must not match every note")
	assert.Equal(t, 0, state.Detail(TypeSelf, "A", "B"))
	assert.Equal(t, 1, state.Dropped)
}
