/*
Package nbt implements Named Binary Tag, a self-describing binary format for
trees of typed values.

We implement:

1. A tag tree: scalar tags (Byte, Short, Int, Long, Float, Double, String,
ByteArray, IntArray) and two containers, *List and *Compound.

2. A binary codec with two byte orders, BigEndian and LittleEndian.

3. A parser for the JSON-like text form, and a writer for it.

Compression lives in the compress subpackage; keyed persistence of roots in
bbolt lives in the store subpackage.

# Technical Details

**Named tags.**
On the wire, a named tag is its type byte, its name, then its payload.
Compound entries and roots are named. List elements are not named and carry
no type byte of their own: the list header declares the element type once.

**Strings.**
A string is an unsigned 16-bit byte length followed by the bytes. Lengths
above 32767 are rejected both when writing and when reading.

**Compounds.**
A compound payload is a sequence of named tags terminated by a single End
byte (type 0). Names are unique; see ReadOptions.DuplicateKeys for what
happens when encoded data repeats one. Insertion order is preserved.

**Lists.**
A list payload is the element type byte, a signed 32-bit count, then the
element payloads. An empty list may declare any element type; we read it as
an untyped list (element type End). A non-empty list of End is malformed.

**Arrays.**
ByteArray and IntArray payloads are a signed 32-bit count followed by the
elements. Negative counts are malformed.

**Depth.**
Decoding recurses into lists and compounds, so untrusted input must be read
with a ReadOptions.MaxDepth. The text parser limits depth by default.

## Read modes

Format.Read decodes a single root. Format.ReadHeadless decodes a bare payload
whose type is known from context. Format.ReadMultiple decodes back-to-back
roots until the input is exhausted.
*/
package nbt
