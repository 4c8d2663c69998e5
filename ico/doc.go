// Package ico encodes and decodes ICO and CUR files, the Windows icon and
// cursor container formats.  A file is a directory of independently encoded
// images; each payload is either a legacy headerless BMP (with its stacked
// color and mask planes) or an embedded PNG, chosen automatically per image
// on encode.
package ico
