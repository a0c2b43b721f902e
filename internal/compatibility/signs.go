package compatibility

// sunSignTable[a][b] is how sign a is traditionally said to get on with sign b.
// Rows are the first user's Sun sign, columns the second's. The matrix is
// deliberately not symmetric.
var sunSignTable = [12][12]int{
	//A   Ta  Ge  Ca  Le  Vi  Li  Sc  Sa  Cp  Aq  Pi
	{78, 52, 76, 42, 94, 46, 70, 46, 90, 42, 76, 52}, // Aries
	{52, 78, 52, 76, 42, 88, 46, 70, 46, 90, 42, 76}, // Taurus
	{76, 52, 78, 52, 76, 42, 89, 46, 60, 46, 90, 42}, // Gemini
	{42, 76, 52, 78, 52, 76, 42, 95, 46, 58, 46, 90}, // Cancer
	{92, 42, 76, 52, 78, 52, 76, 42, 90, 46, 68, 46}, // Leo
	{46, 91, 42, 76, 52, 78, 52, 76, 42, 90, 46, 61}, // Virgo
	{62, 46, 92, 42, 76, 52, 78, 52, 76, 42, 90, 46}, // Libra
	{46, 63, 46, 93, 42, 76, 52, 78, 52, 76, 42, 90}, // Scorpio
	{93, 46, 67, 46, 90, 42, 76, 52, 78, 52, 76, 42}, // Sagittarius
	{42, 90, 46, 66, 46, 90, 42, 76, 52, 78, 52, 76}, // Capricorn
	{76, 42, 88, 46, 60, 46, 90, 42, 76, 52, 78, 52}, // Aquarius
	{52, 76, 42, 90, 46, 69, 46, 94, 42, 76, 52, 78}, // Pisces
}

// SunSignScore looks up the traditional compatibility of two Sun signs.
func SunSignScore(a, b Sign) (int, bool) {
	i, j := a.Index(), b.Index()
	if i < 0 || j < 0 {
		return 0, false
	}
	return sunSignTable[i][j], true
}
