package indicators

import (
	"fmt"

	"github.com/quantbench/smacross/market"
)

// SimpleMA is a streaming Simple Moving Average over closing prices.
type SimpleMA struct {
	period int
	closes []float64
}

// NewSimpleMA creates a Simple Moving Average indicator with the given period.
func NewSimpleMA(period int) *SimpleMA {
	return &SimpleMA{
		period: period,
		closes: make([]float64, 0, period),
	}
}

func (m *SimpleMA) Name() string {
	return fmt.Sprintf("SMA(%d)", m.period)
}

func (m *SimpleMA) Warmup() int {
	return m.period
}

func (m *SimpleMA) Reset() {
	m.closes = m.closes[:0]
}

func (m *SimpleMA) Update(b market.Bar) {
	m.closes = append(m.closes, b.Close)
	// Keep only the last 'period' closes
	if len(m.closes) > m.period {
		m.closes = m.closes[1:]
	}
}

func (m *SimpleMA) Ready() bool {
	return len(m.closes) >= m.period
}

func (m *SimpleMA) Value() float64 {
	if !m.Ready() {
		return 0
	}
	sum := 0.0
	for _, c := range m.closes {
		sum += c
	}
	return sum / float64(len(m.closes))
}

// SmoothedMA is a streaming Smoothed (Wilder) Moving Average. The first
// ready value is the simple mean of the first 'period' closes; each
// subsequent value is prev + (close - prev) / period. It reacts more slowly
// than SimpleMA, which shifts crossover timing.
type SmoothedMA struct {
	period    int
	smma      float64
	count     int
	warmupSum float64
}

// NewSmoothedMA creates a Smoothed Moving Average indicator with the given period.
func NewSmoothedMA(period int) *SmoothedMA {
	return &SmoothedMA{period: period}
}

func (s *SmoothedMA) Name() string {
	return fmt.Sprintf("SMMA(%d)", s.period)
}

func (s *SmoothedMA) Warmup() int {
	return s.period
}

func (s *SmoothedMA) Reset() {
	s.smma = 0
	s.count = 0
	s.warmupSum = 0
}

func (s *SmoothedMA) Update(b market.Bar) {
	if s.count < s.period {
		// During warmup, accumulate sum for the initial SMA seed
		s.warmupSum += b.Close
		s.count++
		if s.count == s.period {
			s.smma = s.warmupSum / float64(s.period)
		}
		return
	}
	s.smma += (b.Close - s.smma) / float64(s.period)
}

func (s *SmoothedMA) Ready() bool {
	return s.count >= s.period
}

func (s *SmoothedMA) Value() float64 {
	if !s.Ready() {
		return 0
	}
	return s.smma
}
