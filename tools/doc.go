// Package tools defines tool contracts, the registry and the built-in tools.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Registry: explicit name -> definition map populated at startup.
//   - Tools: run_shell_command, read_file, list_files, edit_file. File tools
//     are confined to the working directory by internal/sandbox.
//
// Tools never decide whether they may run; callers gate every call behind approval.
package tools
