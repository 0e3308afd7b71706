package scope

// pythonBuiltins is the set of names bound in Python's builtin
// namespace. Bare references to them resolve to the builtin scope and
// produce no binding. An assignment to one of these names still records
// a local binding, but Renameable excludes it.
var pythonBuiltins = map[string]bool{
	"abs": true, "aiter": true, "all": true, "anext": true, "any": true,
	"ascii": true, "bin": true, "bool": true, "breakpoint": true,
	"bytearray": true, "bytes": true, "callable": true, "chr": true,
	"classmethod": true, "compile": true, "complex": true, "delattr": true,
	"dict": true, "dir": true, "divmod": true, "enumerate": true,
	"eval": true, "exec": true, "filter": true, "float": true,
	"format": true, "frozenset": true, "getattr": true, "globals": true,
	"hasattr": true, "hash": true, "help": true, "hex": true, "id": true,
	"input": true, "int": true, "isinstance": true, "issubclass": true,
	"iter": true, "len": true, "list": true, "locals": true, "map": true,
	"max": true, "memoryview": true, "min": true, "next": true,
	"object": true, "oct": true, "open": true, "ord": true, "pow": true,
	"print": true, "property": true, "range": true, "repr": true,
	"reversed": true, "round": true, "set": true, "setattr": true,
	"slice": true, "sorted": true, "staticmethod": true, "str": true,
	"sum": true, "super": true, "tuple": true, "type": true, "vars": true,
	"zip": true,

	"self": true, "cls": true,

	"True": true, "False": true, "None": true, "NotImplemented": true,
	"Ellipsis": true, "__name__": true, "__file__": true, "__doc__": true,

	"BaseException": true, "Exception": true, "ArithmeticError": true,
	"AssertionError": true, "AttributeError": true, "BufferError": true,
	"EOFError": true, "FileExistsError": true, "FileNotFoundError": true,
	"ImportError": true, "IndentationError": true, "IndexError": true,
	"InterruptedError": true, "KeyError": true, "KeyboardInterrupt": true,
	"LookupError": true, "MemoryError": true, "ModuleNotFoundError": true,
	"NameError": true, "NotImplementedError": true, "OSError": true,
	"OverflowError": true, "PermissionError": true, "RecursionError": true,
	"ReferenceError": true, "RuntimeError": true, "StopAsyncIteration": true,
	"StopIteration": true, "SyntaxError": true, "SystemError": true,
	"SystemExit": true, "TimeoutError": true, "TypeError": true,
	"UnboundLocalError": true, "UnicodeDecodeError": true,
	"UnicodeEncodeError": true, "UnicodeError": true, "ValueError": true,
	"ZeroDivisionError": true, "Warning": true, "DeprecationWarning": true,
}

// IsBuiltin reports whether name belongs to Python's builtin namespace
// (including the conventional self/cls receivers).
func IsBuiltin(name string) bool {
	return pythonBuiltins[name]
}
