package utils

import (
	"errors"
	"fmt"
	"strings"
)

var ErrAsciiFrame = errors.New("invalid ascii frame")

type AsciiFrameField struct {
	// Name of the field
	Name string

	// Units within the frame the field begins from
	Begin int

	// Field width
	Width int
}

// The last unit within the frame used by this field
func (f *AsciiFrameField) TopUnit() int {
	return f.PastTopUnit() - 1
}

// The first unit within the frame used by the next field
func (f *AsciiFrameField) PastTopUnit() int {
	return f.Begin + f.Width
}

type AsciiFrameUnitLayout uint

const (
	// Units increase left to right
	AsciiFrameUnitLayout_LeftToRight AsciiFrameUnitLayout = iota
	// Units increase right to left
	AsciiFrameUnitLayout_RightToLeft
)

type asciiFrame struct {
	fields     []AsciiFrameField
	frameWidth int
	unit       string
	leftpad    int
	layout     AsciiFrameUnitLayout
}

type asciiFrameColumn struct {
	index     string
	name      string
	width     string
	minLength int
}

const (
	asciiFrameBodySplitter   = "|"
	asciiFrameBorderSplitter = "+"
	asciiFrameBorderBody     = "-"
	asciiFrameArrowTipLeft   = "<-"
	asciiFrameArrowBody      = "-"
	asciiFrameArrowTipRight  = "->"
	asciiFrameIndexBody      = " "
	asciiFrameArrowSplitter  = " "
)

func (f *asciiFrame) TopUnit() int {
	return f.frameWidth - 1
}

// Writes text centered in a cell of the given length, padding both sides with filler
func writeCentered(text string, decorationLength int, filler string, length int, builder *strings.Builder) error {
	free := length - len(text) - decorationLength

	if free < 0 {
		return MakeError(ErrAsciiFrame, "text '%v' is %v chars long but target length is only %v chars", text, len(text), length)
	}

	builder.WriteString(strings.Repeat(filler, free/2))
	builder.WriteString(text)
	builder.WriteString(strings.Repeat(filler, free-free/2))

	return nil
}

func (f *asciiFrame) columns() []asciiFrameColumn {
	columns := make([]asciiFrameColumn, len(f.fields))

	for i := range columns {
		field := &f.fields[i]
		index := field.Begin

		if f.layout == AsciiFrameUnitLayout_RightToLeft {
			field = &f.fields[len(f.fields)-i-1]
			index = field.TopUnit()
		}

		column := &columns[i]
		column.index = fmt.Sprint(index)
		column.name = fmt.Sprintf(" %v ", field.Name)
		column.width = fmt.Sprintf(" %v %v ", field.Width, f.unit)
		column.minLength = Max([]int{
			len(column.index),
			len(column.name),
			len(asciiFrameArrowTipLeft) + len(column.width) + len(asciiFrameArrowTipRight),
		})
	}

	return columns
}

func (f *asciiFrame) Draw() (string, error) {
	leftpad := strings.Repeat(" ", f.leftpad)

	var indices, header, body, footer, widths strings.Builder

	for _, row := range []*strings.Builder{&indices, &header, &body, &footer, &widths} {
		row.WriteString(leftpad)
	}

	for _, column := range f.columns() {
		indices.WriteString(column.index)
		indices.WriteString(strings.Repeat(asciiFrameIndexBody, column.minLength-len(column.index)+1))
		header.WriteString(asciiFrameBorderSplitter)
		header.WriteString(strings.Repeat(asciiFrameBorderBody, column.minLength))
		body.WriteString(asciiFrameBodySplitter)
		if err := writeCentered(column.name, 0, " ", column.minLength, &body); err != nil {
			return "", err
		}
		footer.WriteString(asciiFrameBorderSplitter)
		footer.WriteString(strings.Repeat(asciiFrameBorderBody, column.minLength))
		widths.WriteString(asciiFrameArrowSplitter)
		widths.WriteString(asciiFrameArrowTipLeft)
		if err := writeCentered(column.width, len(asciiFrameArrowTipLeft)+len(asciiFrameArrowTipRight), asciiFrameArrowBody, column.minLength, &widths); err != nil {
			return "", err
		}
		widths.WriteString(asciiFrameArrowTipRight)
	}

	if f.layout == AsciiFrameUnitLayout_LeftToRight {
		indices.WriteString(fmt.Sprint(f.TopUnit()))
	} else {
		indices.WriteString("0")
	}

	header.WriteString(asciiFrameBorderSplitter)
	body.WriteString(asciiFrameBodySplitter)
	footer.WriteString(asciiFrameBorderSplitter)
	widths.WriteString(" ")

	var result strings.Builder

	for _, row := range []*strings.Builder{&indices, &header, &body, &footer, &widths} {
		result.WriteString(row.String())
		result.WriteString("\n")
	}

	return result.String(), nil
}

func fillAsciiFrameGaps(fields []AsciiFrameField, frameWidth int) ([]AsciiFrameField, error) {
	result := make([]AsciiFrameField, 0, len(fields))
	currentUnit := 0

	for _, field := range fields {
		if field.Begin > currentUnit {
			result = append(result, AsciiFrameField{
				Name:  "(unused)",
				Begin: currentUnit,
				Width: field.Begin - currentUnit,
			})
		} else if field.Begin < currentUnit {
			return nil, MakeError(ErrAsciiFrame, "field '%v' at unit %v overlaps the previous field, make sure fields are sorted by position", field.Name, field.Begin)
		}

		result = append(result, field)

		currentUnit = field.PastTopUnit()
	}

	if currentUnit < frameWidth {
		result = append(result, AsciiFrameField{
			Name:  "(unused)",
			Begin: currentUnit,
			Width: frameWidth - currentUnit,
		})
	}

	return result, nil
}

// Prints an ascii diagram of a binary frame composed of contiguous fields of different unit lenghts
func AsciiFrame(fields []AsciiFrameField, frameWidth int, unit string, layout AsciiFrameUnitLayout, leftpad int) (string, error) {
	allFields, err := fillAsciiFrameGaps(fields, frameWidth)
	if err != nil {
		return "", err
	}

	frame := asciiFrame{
		fields:     allFields,
		frameWidth: allFields[len(allFields)-1].PastTopUnit(),
		unit:       unit,
		leftpad:    leftpad,
		layout:     layout,
	}

	return frame.Draw()
}
