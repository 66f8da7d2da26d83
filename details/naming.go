package details

import "strconv"

const (
	// FieldNamePrefix precedes the hex-encoded digest in data field names.
	FieldNamePrefix = "__StaticData_"
	// StorageTypePrefix precedes the decimal size in storage type names.
	StorageTypePrefix = "__StaticArrayInitTypeSize="
	// ContainerBaseName is the container type name before the slot suffix.
	ContainerBaseName = "<PrivateImplementationDetails>"
)

const hexDigits = "0123456789ABCDEF"

// FieldName returns the content-derived field name for digest.
func FieldName(digest []byte) string {
	buf := make([]byte, len(FieldNamePrefix), len(FieldNamePrefix)+2*len(digest))
	copy(buf, FieldNamePrefix)
	for _, b := range digest {
		buf = append(buf, hexDigits[b>>4], hexDigits[b&0x0f])
	}
	return string(buf)
}

// StorageTypeName returns the name of the synthesized storage type of size bytes.
func StorageTypeName(size uint32) string {
	return StorageTypePrefix + strconv.FormatUint(uint64(size), 10)
}

// ContainerName returns the container type name for a submission slot index.
// A negative index yields the bare base name.
func ContainerName(slot int) string {
	if slot < 0 {
		return ContainerBaseName
	}
	return ContainerBaseName + strconv.Itoa(slot)
}
