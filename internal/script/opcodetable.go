package script

// opCodeNames maps every opcode this interpreter recognizes to its
// canonical mnemonic, used by String and TranslateToOps.
var opCodeNames = map[int]string{
	0:   "OP_0",
	76:  "OP_PUSHDATA1",
	77:  "OP_PUSHDATA2",
	78:  "OP_PUSHDATA4",
	79:  "OP_1NEGATE",
	81:  "OP_1",
	82:  "OP_2",
	83:  "OP_3",
	84:  "OP_4",
	85:  "OP_5",
	86:  "OP_6",
	87:  "OP_7",
	88:  "OP_8",
	89:  "OP_9",
	90:  "OP_10",
	91:  "OP_11",
	92:  "OP_12",
	93:  "OP_13",
	94:  "OP_14",
	95:  "OP_15",
	96:  "OP_16",
	97:  "OP_NOP",
	99:  "OP_IF",
	100: "OP_NOTIF",
	103: "OP_ELSE",
	104: "OP_ENDIF",
	105: "OP_VERIFY",
	106: "OP_RETURN",
	107: "OP_TOALTSTACK",
	108: "OP_FROMALTSTACK",
	109: "OP_2DROP",
	110: "OP_2DUP",
	111: "OP_3DUP",
	112: "OP_2OVER",
	113: "OP_2ROT",
	114: "OP_2SWAP",
	115: "OP_IFDUP",
	116: "OP_DEPTH",
	117: "OP_DROP",
	118: "OP_DUP",
	119: "OP_NIP",
	120: "OP_OVER",
	121: "OP_PICK",
	122: "OP_ROLL",
	123: "OP_ROT",
	124: "OP_SWAP",
	125: "OP_TUCK",
	130: "OP_SIZE",
	135: "OP_EQUAL",
	136: "OP_EQUALVERIFY",
	139: "OP_1ADD",
	140: "OP_1SUB",
	143: "OP_NEGATE",
	144: "OP_ABS",
	145: "OP_NOT",
	146: "OP_0NOTEQUAL",
	147: "OP_ADD",
	148: "OP_SUB",
	149: "OP_MUL",
	154: "OP_BOOLAND",
	155: "OP_BOOLOR",
	156: "OP_NUMEQUAL",
	157: "OP_NUMEQUALVERIFY",
	158: "OP_NUMNOTEQUAL",
	159: "OP_LESSTHAN",
	160: "OP_GREATERTHAN",
	161: "OP_LESSTHANOREQUAL",
	162: "OP_GREATERTHANOREQUAL",
	163: "OP_MIN",
	164: "OP_MAX",
	165: "OP_WITHIN",
	166: "OP_RIPEMD160",
	167: "OP_SHA1",
	168: "OP_SHA256",
	169: "OP_HASH160",
	170: "OP_HASH256",
	172: "OP_CHECKSIG",
	173: "OP_CHECKSIGVERIFY",
	174: "OP_CHECKMULTISIG",
	175: "OP_CHECKMULTISIGVERIFY",
	176: "OP_NOP1",
	177: "OP_CHECKLOCKTIMEVERIFY",
	178: "OP_CHECKSEQUENCEVERIFY",
	179: "OP_NOP4",
	180: "OP_NOP5",
	181: "OP_NOP6",
	182: "OP_NOP7",
	183: "OP_NOP8",
	184: "OP_NOP9",
	185: "OP_NOP10",
}

// OpCodeFunctions is the fixed mapping from opcode byte to handler.
// Handlers fall into four call shapes dispatched explicitly by
// Script.Evaluate: (stack), (stack, cmds) for OP_IF/OP_NOTIF,
// (stack, altStack) for the alt-stack ops, and (stack, z) for the
// CHECKSIG family. opCheckLockTimeVerify/opCheckSequenceVerify take
// (stack, version/locktime, sequence) and are dispatched separately.
var OpCodeFunctions = map[int]interface{}{
	0:   op0,
	79:  op1Negate,
	81:  op1,
	82:  op2,
	83:  op3,
	84:  op4,
	85:  op5,
	86:  op6,
	87:  op7,
	88:  op8,
	89:  op9,
	90:  op10,
	91:  op11,
	92:  op12,
	93:  op13,
	94:  op14,
	95:  op15,
	96:  op16,
	97:  opNop,
	99:  opIf,
	100: opNotIf,
	105: opVerify,
	106: opReturn,
	107: opToAltStack,
	108: opFromAltStack,
	109: op2Drop,
	110: op2Dup,
	111: op3Dup,
	112: op2Over,
	113: op2Rot,
	114: op2Swap,
	115: opIfDup,
	116: opDepth,
	117: opDrop,
	118: opDup,
	119: opNip,
	120: opOver,
	121: opPick,
	122: opRoll,
	123: opRot,
	124: opSwap,
	125: opTuck,
	130: opSize,
	135: opEqual,
	136: opEqualVerify,
	139: op1Add,
	140: op1Sub,
	143: opNegate,
	144: opAbs,
	145: opNot,
	146: op0NotEqual,
	147: opAdd,
	148: opSub,
	149: opMul,
	154: opBoolAnd,
	155: opBoolOr,
	156: opNumEqual,
	157: opNumEqualVerify,
	158: opNumNotEqual,
	159: opLessThan,
	160: opGreaterThan,
	161: opLessThanOrEqual,
	162: opGreaterThanOrEqual,
	163: opMin,
	164: opMax,
	165: opWithin,
	166: opRipemd160,
	167: opSha1,
	168: opSha256,
	169: opHash160,
	170: opHash256,
	172: opChecksig,
	173: opChecksigVerify,
	174: opCheckMultisig,
	175: opCheckMultisigVerify,
	176: opNop,
	177: opCheckLockTimeVerify,
	178: opCheckSequenceVerify,
	179: opNop,
	180: opNop,
	181: opNop,
	182: opNop,
	183: opNop,
	184: opNop,
	185: opNop,
}
