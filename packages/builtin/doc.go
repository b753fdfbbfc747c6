// Package builtin provides the functions available inside {{...}}
// interpolation.
//
// Available functions:
//   - uuid(): Random UUID v4
//   - now(), date(layout): Current UTC time as RFC 3339 or a Go layout
//   - timestamp(), timestampMs(): Current Unix time
//   - random(min, max): Random integer in range
//   - randomString(length): Random alphanumeric string
//   - base64(value), base64Decode(value): Standard base64
//   - md5(value), sha256(value): Hex digests
//   - urlEncode(value), urlDecode(value): Query escaping
//
// Functions are invoked as {{name(args)}}; arguments may be quoted.
package builtin
