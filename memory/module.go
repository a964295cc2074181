package memory

const (
	sectionMemory = 0x05
	sectionExport = 0x07
	exportMemory  = 0x02
	limitsMin     = 0x00
	limitsMinMax  = 0x01
)

var wasmHeader = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// memoryModule returns a module that declares one memory and exports it.
func memoryModule(name string, pages, maxPages uint32) []byte {
	limits := []byte{limitsMin}
	limits = append(limits, encodeULEB128(pages)...)
	if maxPages > 0 {
		limits[0] = limitsMinMax
		limits = append(limits, encodeULEB128(maxPages)...)
	}
	memories := append([]byte{0x01}, limits...)

	exports := []byte{0x01}
	exports = append(exports, encodeULEB128(uint32(len(name)))...)
	exports = append(exports, name...)
	exports = append(exports, exportMemory, 0x00)

	out := append([]byte(nil), wasmHeader...)
	out = appendSection(out, sectionMemory, memories)
	out = appendSection(out, sectionExport, exports)
	return out
}

func appendSection(out []byte, id byte, body []byte) []byte {
	out = append(out, id)
	out = append(out, encodeULEB128(uint32(len(body)))...)
	return append(out, body...)
}

func encodeULEB128(v uint32) []byte {
	var result []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		result = append(result, b)
		if v == 0 {
			break
		}
	}
	return result
}
