// Copyright 2025 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package picker

// The hard-coded default mappings, based on an examination of glibc and
// libstdc++ headers on Linux. Order matters: within one key, earlier entries
// are the better suggestion.

type includeMapEntry struct {
	from    string
	fromVis Visibility
	to      string
	toVis   Visibility
}

// C standard headers and their C++ wrappers. Both sides are public; the
// mapping just records that <cassert> re-exports <assert.h> and so on.
var cHeaderIncludeMap = []includeMapEntry{
	{"<assert.h>", VisibilityPublic, "<cassert>", VisibilityPublic},
	{"<complex.h>", VisibilityPublic, "<ccomplex>", VisibilityPublic},
	{"<ctype.h>", VisibilityPublic, "<cctype>", VisibilityPublic},
	{"<errno.h>", VisibilityPublic, "<cerrno>", VisibilityPublic},
	{"<fenv.h>", VisibilityPublic, "<cfenv>", VisibilityPublic},
	{"<float.h>", VisibilityPublic, "<cfloat>", VisibilityPublic},
	{"<inttypes.h>", VisibilityPublic, "<cinttypes>", VisibilityPublic},
	{"<iso646.h>", VisibilityPublic, "<ciso646>", VisibilityPublic},
	{"<limits.h>", VisibilityPublic, "<climits>", VisibilityPublic},
	{"<locale.h>", VisibilityPublic, "<clocale>", VisibilityPublic},
	{"<math.h>", VisibilityPublic, "<cmath>", VisibilityPublic},
	{"<setjmp.h>", VisibilityPublic, "<csetjmp>", VisibilityPublic},
	{"<signal.h>", VisibilityPublic, "<csignal>", VisibilityPublic},
	{"<stdarg.h>", VisibilityPublic, "<cstdarg>", VisibilityPublic},
	{"<stddef.h>", VisibilityPublic, "<cstddef>", VisibilityPublic},
	{"<stdint.h>", VisibilityPublic, "<cstdint>", VisibilityPublic},
	{"<stdio.h>", VisibilityPublic, "<cstdio>", VisibilityPublic},
	{"<stdlib.h>", VisibilityPublic, "<cstdlib>", VisibilityPublic},
	{"<string.h>", VisibilityPublic, "<cstring>", VisibilityPublic},
	{"<tgmath.h>", VisibilityPublic, "<ctgmath>", VisibilityPublic},
	{"<time.h>", VisibilityPublic, "<ctime>", VisibilityPublic},
	{"<wchar.h>", VisibilityPublic, "<cwchar>", VisibilityPublic},
	{"<wctype.h>", VisibilityPublic, "<cwctype>", VisibilityPublic},
}

// Private glibc and kernel headers, mapped to the POSIX headers users are
// supposed to include.
var privateCIncludeMap = []includeMapEntry{
	{"<bits/byteswap.h>", VisibilityPrivate, "<byteswap.h>", VisibilityPublic},
	{"<bits/confname.h>", VisibilityPrivate, "<unistd.h>", VisibilityPublic},
	{"<bits/dirent.h>", VisibilityPrivate, "<dirent.h>", VisibilityPublic},
	{"<bits/dlfcn.h>", VisibilityPrivate, "<dlfcn.h>", VisibilityPublic},
	{"<bits/errno.h>", VisibilityPrivate, "<errno.h>", VisibilityPublic},
	{"<bits/fcntl.h>", VisibilityPrivate, "<fcntl.h>", VisibilityPublic},
	{"<bits/in.h>", VisibilityPrivate, "<netinet/in.h>", VisibilityPublic},
	{"<bits/ioctls.h>", VisibilityPrivate, "<sys/ioctl.h>", VisibilityPublic},
	{"<bits/local_lim.h>", VisibilityPrivate, "<limits.h>", VisibilityPublic},
	{"<bits/mman.h>", VisibilityPrivate, "<sys/mman.h>", VisibilityPublic},
	{"<bits/posix1_lim.h>", VisibilityPrivate, "<limits.h>", VisibilityPublic},
	{"<bits/posix2_lim.h>", VisibilityPrivate, "<limits.h>", VisibilityPublic},
	{"<bits/resource.h>", VisibilityPrivate, "<sys/resource.h>", VisibilityPublic},
	{"<bits/sigaction.h>", VisibilityPrivate, "<signal.h>", VisibilityPublic},
	{"<bits/signum.h>", VisibilityPrivate, "<signal.h>", VisibilityPublic},
	{"<bits/socket.h>", VisibilityPrivate, "<sys/socket.h>", VisibilityPublic},
	{"<bits/stat.h>", VisibilityPrivate, "<sys/stat.h>", VisibilityPublic},
	{"<bits/statvfs.h>", VisibilityPrivate, "<sys/statvfs.h>", VisibilityPublic},
	{"<bits/time.h>", VisibilityPrivate, "<sys/time.h>", VisibilityPublic},
	{"<bits/types.h>", VisibilityPrivate, "<sys/types.h>", VisibilityPublic},
	{"<bits/uio.h>", VisibilityPrivate, "<sys/uio.h>", VisibilityPublic},
	{"<bits/waitflags.h>", VisibilityPrivate, "<sys/wait.h>", VisibilityPublic},
	{"<bits/waitstatus.h>", VisibilityPrivate, "<sys/wait.h>", VisibilityPublic},
	{"<linux/errno.h>", VisibilityPrivate, "<errno.h>", VisibilityPublic},
	{"<linux/limits.h>", VisibilityPrivate, "<limits.h>", VisibilityPublic},
	{"<sys/ucontext.h>", VisibilityPrivate, "<ucontext.h>", VisibilityPublic},
}

// Private libstdc++ implementation headers and the public headers that
// re-export them. The <istream>/<ostream>/<ios> entries say those public
// headers are also available through the stream convenience headers, which
// gives the "include recursion" chains like bits/istream.tcc -> istream ->
// iostream.
var cppIncludeMap = []includeMapEntry{
	{"<bits/algorithmfwd.h>", VisibilityPrivate, "<algorithm>", VisibilityPublic},
	{"<bits/allocator.h>", VisibilityPrivate, "<memory>", VisibilityPublic},
	{"<bits/basic_ios.h>", VisibilityPrivate, "<ios>", VisibilityPublic},
	{"<bits/basic_string.h>", VisibilityPrivate, "<string>", VisibilityPublic},
	{"<bits/char_traits.h>", VisibilityPrivate, "<string>", VisibilityPublic},
	{"<bits/fstream.tcc>", VisibilityPrivate, "<fstream>", VisibilityPublic},
	{"<bits/istream.tcc>", VisibilityPrivate, "<istream>", VisibilityPublic},
	{"<bits/ostream.tcc>", VisibilityPrivate, "<ostream>", VisibilityPublic},
	{"<bits/shared_ptr.h>", VisibilityPrivate, "<memory>", VisibilityPublic},
	{"<bits/sstream.tcc>", VisibilityPrivate, "<sstream>", VisibilityPublic},
	{"<bits/stl_algo.h>", VisibilityPrivate, "<algorithm>", VisibilityPublic},
	{"<bits/stl_algobase.h>", VisibilityPrivate, "<algorithm>", VisibilityPublic},
	{"<bits/stl_deque.h>", VisibilityPrivate, "<deque>", VisibilityPublic},
	{"<bits/stl_function.h>", VisibilityPrivate, "<functional>", VisibilityPublic},
	{"<bits/stl_iterator.h>", VisibilityPrivate, "<iterator>", VisibilityPublic},
	{"<bits/stl_list.h>", VisibilityPrivate, "<list>", VisibilityPublic},
	{"<bits/stl_map.h>", VisibilityPrivate, "<map>", VisibilityPublic},
	{"<bits/stl_pair.h>", VisibilityPrivate, "<utility>", VisibilityPublic},
	{"<bits/stl_queue.h>", VisibilityPrivate, "<queue>", VisibilityPublic},
	{"<bits/stl_set.h>", VisibilityPrivate, "<set>", VisibilityPublic},
	{"<bits/stl_stack.h>", VisibilityPrivate, "<stack>", VisibilityPublic},
	{"<bits/stl_tree.h>", VisibilityPrivate, "<map>", VisibilityPublic},
	{"<bits/stl_tree.h>", VisibilityPrivate, "<set>", VisibilityPublic},
	{"<bits/stl_vector.h>", VisibilityPrivate, "<vector>", VisibilityPublic},
	{"<bits/stringfwd.h>", VisibilityPrivate, "<string>", VisibilityPublic},
	{"<bits/unique_ptr.h>", VisibilityPrivate, "<memory>", VisibilityPublic},
	{"<ios>", VisibilityPublic, "<istream>", VisibilityPublic},
	{"<ios>", VisibilityPublic, "<ostream>", VisibilityPublic},
	{"<ios>", VisibilityPublic, "<iostream>", VisibilityPublic},
	{"<istream>", VisibilityPublic, "<fstream>", VisibilityPublic},
	{"<istream>", VisibilityPublic, "<iostream>", VisibilityPublic},
	{"<istream>", VisibilityPublic, "<sstream>", VisibilityPublic},
	{"<ostream>", VisibilityPublic, "<fstream>", VisibilityPublic},
	{"<ostream>", VisibilityPublic, "<iostream>", VisibilityPublic},
	{"<ostream>", VisibilityPublic, "<sstream>", VisibilityPublic},
	{"<streambuf>", VisibilityPublic, "<iostream>", VisibilityPublic},
}

// Symbols that can be provided by several headers. For most symbols the
// defining header is the only answer and no entry is needed here.
var symbolIncludeMap = []includeMapEntry{
	{"NULL", VisibilityPrivate, "<stddef.h>", VisibilityPublic},
	{"NULL", VisibilityPrivate, "<cstddef>", VisibilityPublic},
	{"NULL", VisibilityPrivate, "<clocale>", VisibilityPublic},
	{"NULL", VisibilityPrivate, "<cstdio>", VisibilityPublic},
	{"NULL", VisibilityPrivate, "<cstdlib>", VisibilityPublic},
	{"NULL", VisibilityPrivate, "<cstring>", VisibilityPublic},
	{"NULL", VisibilityPrivate, "<ctime>", VisibilityPublic},
	{"NULL", VisibilityPrivate, "<cwchar>", VisibilityPublic},
	{"NULL", VisibilityPrivate, "<locale.h>", VisibilityPublic},
	{"NULL", VisibilityPrivate, "<stdio.h>", VisibilityPublic},
	{"NULL", VisibilityPrivate, "<stdlib.h>", VisibilityPublic},
	{"NULL", VisibilityPrivate, "<string.h>", VisibilityPublic},
	{"NULL", VisibilityPrivate, "<time.h>", VisibilityPublic},
	{"NULL", VisibilityPrivate, "<wchar.h>", VisibilityPublic},
	{"size_t", VisibilityPrivate, "<stddef.h>", VisibilityPublic},
	{"size_t", VisibilityPrivate, "<cstddef>", VisibilityPublic},
	{"size_t", VisibilityPrivate, "<cstdio>", VisibilityPublic},
	{"size_t", VisibilityPrivate, "<cstdlib>", VisibilityPublic},
	{"size_t", VisibilityPrivate, "<cstring>", VisibilityPublic},
	{"size_t", VisibilityPrivate, "<ctime>", VisibilityPublic},
	{"size_t", VisibilityPrivate, "<stdio.h>", VisibilityPublic},
	{"size_t", VisibilityPrivate, "<stdlib.h>", VisibilityPublic},
	{"size_t", VisibilityPrivate, "<string.h>", VisibilityPublic},
	{"size_t", VisibilityPrivate, "<time.h>", VisibilityPublic},
	{"ptrdiff_t", VisibilityPrivate, "<stddef.h>", VisibilityPublic},
	{"ptrdiff_t", VisibilityPrivate, "<cstddef>", VisibilityPublic},
	{"offsetof", VisibilityPrivate, "<stddef.h>", VisibilityPublic},
	{"offsetof", VisibilityPrivate, "<cstddef>", VisibilityPublic},
	{"errno", VisibilityPrivate, "<errno.h>", VisibilityPublic},
	{"errno", VisibilityPrivate, "<cerrno>", VisibilityPublic},
	{"EOF", VisibilityPrivate, "<stdio.h>", VisibilityPublic},
	{"EOF", VisibilityPrivate, "<cstdio>", VisibilityPublic},
	{"FILE", VisibilityPrivate, "<stdio.h>", VisibilityPublic},
	{"FILE", VisibilityPrivate, "<cstdio>", VisibilityPublic},
	{"va_list", VisibilityPrivate, "<stdarg.h>", VisibilityPublic},
	{"va_list", VisibilityPrivate, "<cstdarg>", VisibilityPublic},
	{"time_t", VisibilityPrivate, "<time.h>", VisibilityPublic},
	{"time_t", VisibilityPrivate, "<ctime>", VisibilityPublic},
	{"clock_t", VisibilityPrivate, "<time.h>", VisibilityPublic},
	{"clock_t", VisibilityPrivate, "<ctime>", VisibilityPublic},
	{"sigset_t", VisibilityPrivate, "<signal.h>", VisibilityPublic},
	{"dev_t", VisibilityPrivate, "<sys/types.h>", VisibilityPublic},
	{"dev_t", VisibilityPrivate, "<sys/stat.h>", VisibilityPublic},
	{"mode_t", VisibilityPrivate, "<sys/types.h>", VisibilityPublic},
	{"mode_t", VisibilityPrivate, "<sys/stat.h>", VisibilityPublic},
	{"pid_t", VisibilityPrivate, "<sys/types.h>", VisibilityPublic},
	{"pid_t", VisibilityPrivate, "<unistd.h>", VisibilityPublic},
	{"off_t", VisibilityPrivate, "<sys/types.h>", VisibilityPublic},
	{"off_t", VisibilityPrivate, "<unistd.h>", VisibilityPublic},
	{"ssize_t", VisibilityPrivate, "<sys/types.h>", VisibilityPublic},
	{"ssize_t", VisibilityPrivate, "<unistd.h>", VisibilityPublic},
	{"uid_t", VisibilityPrivate, "<sys/types.h>", VisibilityPublic},
	{"uid_t", VisibilityPrivate, "<unistd.h>", VisibilityPublic},
	{"gid_t", VisibilityPrivate, "<sys/types.h>", VisibilityPublic},
	{"gid_t", VisibilityPrivate, "<unistd.h>", VisibilityPublic},
	{"intptr_t", VisibilityPrivate, "<stdint.h>", VisibilityPublic},
	{"intptr_t", VisibilityPrivate, "<cstdint>", VisibilityPublic},
	{"uintptr_t", VisibilityPrivate, "<stdint.h>", VisibilityPublic},
	{"uintptr_t", VisibilityPrivate, "<cstdint>", VisibilityPublic},
	{"std::allocator", VisibilityPrivate, "<memory>", VisibilityPublic},
	{"std::allocator", VisibilityPrivate, "<string>", VisibilityPublic},
	{"std::allocator", VisibilityPrivate, "<vector>", VisibilityPublic},
	{"std::allocator", VisibilityPrivate, "<map>", VisibilityPublic},
	{"std::allocator", VisibilityPrivate, "<set>", VisibilityPublic},
	{"std::char_traits", VisibilityPrivate, "<string>", VisibilityPublic},
	{"std::char_traits", VisibilityPrivate, "<ostream>", VisibilityPublic},
	{"std::char_traits", VisibilityPrivate, "<istream>", VisibilityPublic},
	{"std::nullptr_t", VisibilityPrivate, "<cstddef>", VisibilityPublic},
	{"std::pair", VisibilityPrivate, "<utility>", VisibilityPublic},
	{"std::size_t", VisibilityPrivate, "<cstddef>", VisibilityPublic},
	{"std::size_t", VisibilityPrivate, "<cstdio>", VisibilityPublic},
	{"std::size_t", VisibilityPrivate, "<cstdlib>", VisibilityPublic},
	{"std::size_t", VisibilityPrivate, "<cstring>", VisibilityPublic},
	{"std::size_t", VisibilityPrivate, "<ctime>", VisibilityPublic},
}

func (p *IncludePicker) addIncludeMapEntries(entries []includeMapEntry) {
	for _, e := range entries {
		p.AddIncludeMapping(e.from, e.fromVis, MappedInclude{Quoted: e.to}, e.toVis)
	}
}

func (p *IncludePicker) addSymbolMapEntries(entries []includeMapEntry) {
	for _, e := range entries {
		p.AddSymbolMapping(e.from, MappedInclude{Quoted: e.to}, e.toVis)
	}
}

func (p *IncludePicker) addDefaultMappings() {
	p.addIncludeMapEntries(cHeaderIncludeMap)
	p.addIncludeMapEntries(privateCIncludeMap)
	p.addIncludeMapEntries(cppIncludeMap)
	p.addSymbolMapEntries(symbolIncludeMap)
}
