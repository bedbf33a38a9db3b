// Copyright 2022 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ltac

import (
	"fmt"
	"strings"
)

// Dump renders f as the human-readable, one-instruction-per-line text
// format described in the specification's "LTAC textual dump format"
// section: a .data header followed by string/float/double entries, then
// one mnemonic line per instruction.
func (f *File) Dump() string {
	var b strings.Builder
	if len(f.Data) > 0 {
		b.WriteString(".data\n")
		for _, d := range f.Data {
			switch d.Kind {
			case StringLit:
				fmt.Fprintf(&b, "%s: .string %q\n", d.Name, d.Value)
			case FloatLit:
				fmt.Fprintf(&b, "%s: .long %s\n", d.Name, d.Value)
			case DoubleLit:
				fmt.Fprintf(&b, "%s: .quad %s\n", d.Name, d.Value)
			}
		}
		b.WriteString("\n")
	}
	for _, ins := range f.Code {
		b.WriteString(ins.dumpLine())
		b.WriteString("\n")
	}
	return b.String()
}

func (ins Instr) dumpLine() string {
	switch ins.Op {
	case Extern:
		return fmt.Sprintf("extern %s", ins.Name)
	case Label:
		return fmt.Sprintf("lbl %s", ins.Name)
	case Func:
		return fmt.Sprintf("func %s\nsetup %d", ins.Name, ins.Arg1Val)
	case Ret:
		return "ret"
	case Call:
		return fmt.Sprintf("call %s", ins.Name)
	case Syscall:
		return "syscall"
	case Exit:
		return "exit"
	case Malloc:
		return "malloc"
	case Free:
		return "free"
	case PushArg:
		return fmt.Sprintf("pusharg %s, pos=%d", ins.Arg1, ins.Arg2Val)
	case KPushArg:
		return fmt.Sprintf("kpusharg %s, pos=%d", ins.Arg1, ins.Arg2Val)
	case Br, Be, Bne, Bl, Ble, Bg, Bge, Bfl, Bfle, Bfg, Bfge:
		return fmt.Sprintf("%s %s", ins.Op, ins.Name)
	default:
		if ins.Arg2.IsEmpty() {
			return fmt.Sprintf("%s %s", ins.Op, ins.Arg1)
		}
		return fmt.Sprintf("%s %s, %s", ins.Op, ins.Arg1, ins.Arg2)
	}
}
