// Package expect checks a response against one-line expectations such as
// "status == 200", "header Content-Type contains json" or
// "body.items length 3".
//
// Subjects:
//   - status, duration (milliseconds)
//   - header <name>
//   - body, body.<gjson path> (bracket indexes like items[0] are accepted)
//   - any other word is read as body.<word>
//
// Operators: == != > >= < <= contains !contains startsWith endsWith
// matches exists !exists length includes !includes in !in type
//
// The expected value is parsed as JSON when possible (numbers, booleans,
// arrays, quoted strings) and taken literally otherwise.
package expect
