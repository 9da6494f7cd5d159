// Package dtype provides the MAT-file type registry.
//
// A miMATRIX element carries two independent type descriptions:
//
//   - the array class in its flags subelement (double, char, struct, cell,
//     int32, ...), which decides what Go value the element decodes to;
//   - the data type of each payload subelement (miDOUBLE, miUINT8, ...),
//     which decides how the payload bytes are laid out.
//
// The two need not agree. A double array whose values are small integers is
// commonly stored with a miUINT8 payload, and character data may arrive as
// miUTF8, miUINT16 or miUTF16. Conversion therefore always dispatches on the
// payload data type:
//
//	Function   | Accepts                         | Produces
//	-----------|---------------------------------|-----------
//	Float64s   | any numeric data type           | []float64
//	Int64s     | any integer data type           | []int64
//	Bools      | any numeric data type           | []bool
//	Chars      | 8/16/32-bit ints, miUTF8/16/32  | []uint16
//
// Every converter checks that the payload length equals the element count
// times the element width and fails with [ErrSizeMismatch] otherwise.
// Types the codec does not understand fail with [ErrUnsupportedType].
package dtype
