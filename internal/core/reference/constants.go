package reference

// 單位換算常數與同義詞表。
// 換算數值屬對外契約，一律保持位元精確。

// MassToG 質量單位換算為克
var MassToG = map[string]float64{
	"MG": 0.001,
	"G":  1.0,
	"KG": 1000.0,
	"OZ": 28.349523125,
	"LB": 453.59237,
}

// VolumeToML 體積單位換算為毫升
var VolumeToML = map[string]float64{
	"TSP":    4.92892159375,
	"TBSP":   14.78676478125,
	"FLOZ":   29.5735295625,
	"CUP":    236.5882365,
	"PINT":   473.176473,
	"QUART":  946.352946,
	"GALLON": 3785.411784,
	"ML":     1.0,
	"L":      1000.0,
}

// UnitSynonyms 自由文字單位 token 到封閉枚舉的對照
var UnitSynonyms = map[string]string{
	// 質量
	"g": "G", "gram": "G", "grams": "G",
	"kg": "KG", "kilogram": "KG", "kilograms": "KG",
	"mg": "MG", "milligram": "MG", "milligrams": "MG",
	"oz": "OZ", "ounce": "OZ", "ounces": "OZ",
	"lb": "LB", "lbs": "LB", "pound": "LB", "pounds": "LB",

	// 體積
	"ml": "ML", "milliliter": "ML", "milliliters": "ML", "millilitre": "ML", "millilitres": "ML",
	"l": "L", "liter": "L", "liters": "L", "litre": "L", "litres": "L",
	"tsp": "TSP", "teaspoon": "TSP", "teaspoons": "TSP",
	"tbsp": "TBSP", "tablespoon": "TBSP", "tablespoons": "TBSP", "t": "TBSP", "tbl": "TBSP", "tbs": "TBSP",
	"cup": "CUP", "cups": "CUP", "c": "CUP",
	"fl oz": "FLOZ", "fl. oz": "FLOZ", "fl. oz.": "FLOZ", "fluid ounce": "FLOZ", "fluid ounces": "FLOZ",
	"pt": "PINT", "pint": "PINT", "pints": "PINT",
	"qt": "QUART", "quart": "QUART", "quarts": "QUART",
	"gal": "GALLON", "gallon": "GALLON", "gallons": "GALLON",

	// 計數
	"each": "EA", "ea": "EA", "piece": "EA", "pieces": "EA",
	"clove": "CLOVE", "cloves": "CLOVE",
	"egg": "EGG", "eggs": "EGG",
	"leaf": "LEAF", "leaves": "LEAF",
	"sprig": "SPRIG", "sprigs": "SPRIG",
	"stalk": "STALK", "stalks": "STALK",
	"head": "HEAD", "heads": "HEAD",
	"ear": "EAR", "ears": "EAR",
	"slice": "SLICE", "slices": "SLICE",
	"bunch": "BUNCH", "bunches": "BUNCH",
	"can": "CAN", "cans": "CAN",
	"jar": "JAR", "jars": "JAR",
	"bottle": "BOTTLE", "bottles": "BOTTLE",
	"package": "PACKAGE", "pkg": "PACKAGE", "pack": "PACKAGE", "packet": "PACKAGE",
	"stick": "STICK", "sticks": "STICK",

	// 特殊
	"to taste":  "TO_TASTE",
	"as needed": "AS_NEEDED",
	"pinch":     "PINCH",
	"dash":      "DASH",
	"handful":   "HANDFUL",
	"splash":    "SPLASH",
	"drizzle":   "DRIZZLE",
}

// UnitDimensions 單位枚舉所屬維度
var UnitDimensions = map[string]string{
	// 質量
	"G": "mass", "KG": "mass", "MG": "mass", "OZ": "mass", "LB": "mass",

	// 體積
	"ML": "volume", "L": "volume", "TSP": "volume", "TBSP": "volume",
	"CUP": "volume", "FLOZ": "volume", "PINT": "volume", "QUART": "volume", "GALLON": "volume",

	// 計數
	"EA": "count", "CLOVE": "count", "EGG": "count", "LEAF": "count", "SPRIG": "count",
	"STALK": "count", "HEAD": "count", "EAR": "count", "SLICE": "count", "BUNCH": "count",
	"CAN": "count", "JAR": "count", "BOTTLE": "count", "PACKAGE": "count", "STICK": "count",

	// 特殊
	"TO_TASTE": "special", "AS_NEEDED": "special", "PINCH": "special",
	"DASH": "special", "HANDFUL": "special", "SPLASH": "special", "DRIZZLE": "special",
}

// UnicodeFractions Unicode 分數字元對照
var UnicodeFractions = map[rune]string{
	'¼': "1/4",
	'½': "1/2",
	'¾': "3/4",
	'⅐': "1/7",
	'⅑': "1/9",
	'⅒': "1/10",
	'⅓': "1/3",
	'⅔': "2/3",
	'⅕': "1/5",
	'⅖': "2/5",
	'⅗': "3/5",
	'⅘': "4/5",
	'⅙': "1/6",
	'⅚': "5/6",
	'⅛': "1/8",
	'⅜': "3/8",
	'⅝': "5/8",
	'⅞': "7/8",
}

// FormTokenMap 全局形態 token 對照
var FormTokenMap = map[string]string{
	"ground":     "FORM_GROUND",
	"powder":     "FORM_POWDER",
	"powdered":   "FORM_POWDER",
	"whole":      "FORM_WHOLE",
	"sliced":     "FORM_SLICED",
	"chopped":    "FORM_CHOPPED",
	"diced":      "FORM_CHOPPED",
	"minced":     "FORM_CHOPPED",
	"grated":     "FORM_GRATED",
	"shredded":   "FORM_GRATED",
	"mashed":     "FORM_MASHED",
	"puree":      "FORM_MASHED",
	"purée":      "FORM_MASHED",
	"dried":      "FORM_DRIED",
	"dehydrated": "FORM_DRIED",
	"canned":     "FORM_CANNED",
	"tinned":     "FORM_CANNED",
	"jarred":     "FORM_JARRED",
	"seed":       "FORM_SEEDS",
	"seeds":      "FORM_SEEDS",
	"flake":      "FORM_FLAKES",
	"flakes":     "FORM_FLAKES",
}

// FormTokenPrecedence 形態衝突時的裁決順序（前者優先）
var FormTokenPrecedence = []string{
	"ground",
	"powder",
	"powdered",
	"seed",
	"seeds",
	"flake",
	"flakes",
	"grated",
	"shredded",
	"sliced",
	"chopped",
	"diced",
	"minced",
	"mashed",
	"puree",
	"purée",
	"dried",
	"dehydrated",
	"canned",
	"tinned",
	"jarred",
	"whole",
}

// TextNumbers 文字數詞後備對照
var TextNumbers = map[string]float64{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"half": 0.5, "quarter": 0.25, "third": 1.0 / 3.0,
}

// PackageSizeToSI 包裝尺寸單位的 SI 鏡像換算
var PackageSizeToSI = map[string]struct {
	Unit   string // G | ML
	Factor float64
}{
	"OZ":   {"G", 28.349523125},
	"G":    {"G", 1.0},
	"KG":   {"G", 1000.0},
	"FLOZ": {"ML", 29.5735295625},
	"ML":   {"ML", 1.0},
	"L":    {"ML", 1000.0},
}
