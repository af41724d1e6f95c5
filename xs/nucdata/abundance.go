package nucdata

import (
	"math"
	"strings"
)

// Isotope is one naturally occurring nuclide of an element.
type Isotope struct {
	Nuclide   string
	Abundance float64 // atom fraction
}

// naturalAbundances holds the representative isotopic composition of every
// element with stable or long-lived isotopes, listed by ascending mass number.
var naturalAbundances = map[string][]Isotope{
	"H":  {{"H1", 0.99984426}, {"H2", 0.00015574}},
	"He": {{"He3", 0.000002}, {"He4", 0.999998}},
	"Li": {{"Li6", 0.07589}, {"Li7", 0.92411}},
	"Be": {{"Be9", 1.0}},
	"B":  {{"B10", 0.1982}, {"B11", 0.8018}},
	"C":  {{"C12", 0.988922}, {"C13", 0.011078}},
	"N":  {{"N14", 0.996337}, {"N15", 0.003663}},
	"O":  {{"O16", 0.9976206}, {"O17", 0.000379}, {"O18", 0.0020004}},
	"F":  {{"F19", 1.0}},
	"Ne": {{"Ne20", 0.9048}, {"Ne21", 0.0027}, {"Ne22", 0.0925}},
	"Na": {{"Na23", 1.0}},
	"Mg": {{"Mg24", 0.78951}, {"Mg25", 0.1002}, {"Mg26", 0.11029}},
	"Al": {{"Al27", 1.0}},
	"Si": {{"Si28", 0.9222968}, {"Si29", 0.0468316}, {"Si30", 0.0308716}},
	"P":  {{"P31", 1.0}},
	"S":  {{"S32", 0.9504074}, {"S33", 0.0074869}, {"S34", 0.0419599}, {"S36", 0.0001458}},
	"Cl": {{"Cl35", 0.757647}, {"Cl37", 0.242353}},
	"Ar": {{"Ar36", 0.003336}, {"Ar38", 0.000629}, {"Ar40", 0.996035}},
	"K":  {{"K39", 0.932581}, {"K40", 0.000117}, {"K41", 0.067302}},
	"Ca": {{"Ca40", 0.96941}, {"Ca42", 0.00647}, {"Ca43", 0.00135}, {"Ca44", 0.02086}, {"Ca46", 0.00004}, {"Ca48", 0.00187}},
	"Sc": {{"Sc45", 1.0}},
	"Ti": {{"Ti46", 0.0825}, {"Ti47", 0.0744}, {"Ti48", 0.7372}, {"Ti49", 0.0541}, {"Ti50", 0.0518}},
	"V":  {{"V50", 0.0025}, {"V51", 0.9975}},
	"Cr": {{"Cr50", 0.04345}, {"Cr52", 0.83789}, {"Cr53", 0.09501}, {"Cr54", 0.02365}},
	"Mn": {{"Mn55", 1.0}},
	"Fe": {{"Fe54", 0.05845}, {"Fe56", 0.91754}, {"Fe57", 0.02119}, {"Fe58", 0.00282}},
	"Co": {{"Co59", 1.0}},
	"Ni": {{"Ni58", 0.680769}, {"Ni60", 0.262231}, {"Ni61", 0.011399}, {"Ni62", 0.036345}, {"Ni64", 0.009256}},
	"Cu": {{"Cu63", 0.6915}, {"Cu65", 0.3085}},
	"Zn": {{"Zn64", 0.4917}, {"Zn66", 0.2773}, {"Zn67", 0.0404}, {"Zn68", 0.1845}, {"Zn70", 0.0061}},
	"Ga": {{"Ga69", 0.60108}, {"Ga71", 0.39892}},
	"Ge": {{"Ge70", 0.2052}, {"Ge72", 0.2745}, {"Ge73", 0.0776}, {"Ge74", 0.3652}, {"Ge76", 0.0775}},
	"As": {{"As75", 1.0}},
	"Se": {{"Se74", 0.0086}, {"Se76", 0.0923}, {"Se77", 0.076}, {"Se78", 0.2369}, {"Se80", 0.498}, {"Se82", 0.0882}},
	"Br": {{"Br79", 0.50686}, {"Br81", 0.49314}},
	"Kr": {{"Kr78", 0.00355}, {"Kr80", 0.02286}, {"Kr82", 0.11593}, {"Kr83", 0.115}, {"Kr84", 0.56987}, {"Kr86", 0.17279}},
	"Rb": {{"Rb85", 0.7217}, {"Rb87", 0.2783}},
	"Sr": {{"Sr84", 0.0056}, {"Sr86", 0.0986}, {"Sr87", 0.07}, {"Sr88", 0.8258}},
	"Y":  {{"Y89", 1.0}},
	"Zr": {{"Zr90", 0.5145}, {"Zr91", 0.1122}, {"Zr92", 0.1715}, {"Zr94", 0.1738}, {"Zr96", 0.028}},
	"Nb": {{"Nb93", 1.0}},
	"Mo": {{"Mo92", 0.14649}, {"Mo94", 0.09187}, {"Mo95", 0.15873}, {"Mo96", 0.16673}, {"Mo97", 0.09582}, {"Mo98", 0.24292}, {"Mo100", 0.09744}},
	"Ru": {{"Ru96", 0.0554}, {"Ru98", 0.0187}, {"Ru99", 0.1276}, {"Ru100", 0.126}, {"Ru101", 0.1706}, {"Ru102", 0.3155}, {"Ru104", 0.1862}},
	"Rh": {{"Rh103", 1.0}},
	"Pd": {{"Pd102", 0.0102}, {"Pd104", 0.1114}, {"Pd105", 0.2233}, {"Pd106", 0.2733}, {"Pd108", 0.2646}, {"Pd110", 0.1172}},
	"Ag": {{"Ag107", 0.51839}, {"Ag109", 0.48161}},
	"Cd": {{"Cd106", 0.01245}, {"Cd108", 0.00888}, {"Cd110", 0.1247}, {"Cd111", 0.12795}, {"Cd112", 0.24109}, {"Cd113", 0.12227}, {"Cd114", 0.28754}, {"Cd116", 0.07512}},
	"In": {{"In113", 0.04281}, {"In115", 0.95719}},
	"Sn": {{"Sn112", 0.0097}, {"Sn114", 0.0066}, {"Sn115", 0.0034}, {"Sn116", 0.1454}, {"Sn117", 0.0768}, {"Sn118", 0.2422}, {"Sn119", 0.0859}, {"Sn120", 0.3258}, {"Sn122", 0.0463}, {"Sn124", 0.0579}},
	"Sb": {{"Sb121", 0.5721}, {"Sb123", 0.4279}},
	"Te": {{"Te120", 0.0009}, {"Te122", 0.0255}, {"Te123", 0.0089}, {"Te124", 0.0474}, {"Te125", 0.0707}, {"Te126", 0.1884}, {"Te128", 0.3174}, {"Te130", 0.3408}},
	"I":  {{"I127", 1.0}},
	"Xe": {{"Xe124", 0.00095}, {"Xe126", 0.00089}, {"Xe128", 0.0191}, {"Xe129", 0.26401}, {"Xe130", 0.04071}, {"Xe131", 0.21232}, {"Xe132", 0.26909}, {"Xe134", 0.10436}, {"Xe136", 0.08857}},
	"Cs": {{"Cs133", 1.0}},
	"Ba": {{"Ba130", 0.0011}, {"Ba132", 0.001}, {"Ba134", 0.0242}, {"Ba135", 0.0659}, {"Ba136", 0.0785}, {"Ba137", 0.1123}, {"Ba138", 0.717}},
	"La": {{"La138", 0.0008881}, {"La139", 0.9991119}},
	"Ce": {{"Ce136", 0.00186}, {"Ce138", 0.00251}, {"Ce140", 0.88449}, {"Ce142", 0.11114}},
	"Pr": {{"Pr141", 1.0}},
	"Nd": {{"Nd142", 0.27153}, {"Nd143", 0.12173}, {"Nd144", 0.23798}, {"Nd145", 0.08293}, {"Nd146", 0.17189}, {"Nd148", 0.05756}, {"Nd150", 0.05638}},
	"Sm": {{"Sm144", 0.0308}, {"Sm147", 0.15}, {"Sm148", 0.1125}, {"Sm149", 0.1382}, {"Sm150", 0.0737}, {"Sm152", 0.2674}, {"Sm154", 0.2274}},
	"Eu": {{"Eu151", 0.4781}, {"Eu153", 0.5219}},
	"Gd": {{"Gd152", 0.002}, {"Gd154", 0.0218}, {"Gd155", 0.148}, {"Gd156", 0.2047}, {"Gd157", 0.1565}, {"Gd158", 0.2484}, {"Gd160", 0.2186}},
	"Tb": {{"Tb159", 1.0}},
	"Dy": {{"Dy156", 0.00056}, {"Dy158", 0.00095}, {"Dy160", 0.02329}, {"Dy161", 0.18889}, {"Dy162", 0.25475}, {"Dy163", 0.24896}, {"Dy164", 0.2826}},
	"Ho": {{"Ho165", 1.0}},
	"Er": {{"Er162", 0.00139}, {"Er164", 0.01601}, {"Er166", 0.33503}, {"Er167", 0.22869}, {"Er168", 0.26978}, {"Er170", 0.1491}},
	"Tm": {{"Tm169", 1.0}},
	"Yb": {{"Yb168", 0.00123}, {"Yb170", 0.02982}, {"Yb171", 0.14086}, {"Yb172", 0.21686}, {"Yb173", 0.16103}, {"Yb174", 0.32025}, {"Yb176", 0.12995}},
	"Lu": {{"Lu175", 0.97401}, {"Lu176", 0.02599}},
	"Hf": {{"Hf174", 0.0016}, {"Hf176", 0.0526}, {"Hf177", 0.186}, {"Hf178", 0.2728}, {"Hf179", 0.1362}, {"Hf180", 0.3508}},
	"Ta": {{"Ta180_m1", 0.0001201}, {"Ta181", 0.9998799}},
	"W":  {{"W180", 0.0012}, {"W182", 0.265}, {"W183", 0.1431}, {"W184", 0.3064}, {"W186", 0.2843}},
	"Re": {{"Re185", 0.374}, {"Re187", 0.626}},
	"Os": {{"Os184", 0.0002}, {"Os186", 0.0159}, {"Os187", 0.0196}, {"Os188", 0.1324}, {"Os189", 0.1615}, {"Os190", 0.2626}, {"Os192", 0.4078}},
	"Ir": {{"Ir191", 0.373}, {"Ir193", 0.627}},
	"Pt": {{"Pt190", 0.00012}, {"Pt192", 0.00782}, {"Pt194", 0.32864}, {"Pt195", 0.33775}, {"Pt196", 0.25211}, {"Pt198", 0.07356}},
	"Au": {{"Au197", 1.0}},
	"Hg": {{"Hg196", 0.0015}, {"Hg198", 0.1004}, {"Hg199", 0.1694}, {"Hg200", 0.2314}, {"Hg201", 0.1317}, {"Hg202", 0.2974}, {"Hg204", 0.0682}},
	"Tl": {{"Tl203", 0.29524}, {"Tl205", 0.70476}},
	"Pb": {{"Pb204", 0.014}, {"Pb206", 0.241}, {"Pb207", 0.221}, {"Pb208", 0.524}},
	"Bi": {{"Bi209", 1.0}},
	"Th": {{"Th230", 0.0002}, {"Th232", 0.9998}},
	"Pa": {{"Pa231", 1.0}},
	"U":  {{"U234", 0.000054}, {"U235", 0.007204}, {"U238", 0.992742}},
}

// NaturalAbundance returns a copy of the natural isotopic composition of an element.
func NaturalAbundance(symbol string) ([]Isotope, bool) {
	iso, ok := naturalAbundances[symbol]
	if !ok {
		return nil, false
	}
	out := make([]Isotope, len(iso))
	copy(out, iso)
	return out, true
}

// Elements returns the symbols with tabulated natural abundances.
func Elements() []string {
	out := make([]string, 0, len(naturalAbundances))
	for z := 1; z < len(symbols); z++ {
		if _, ok := naturalAbundances[symbols[z]]; ok {
			out = append(out, symbols[z])
		}
	}
	return out
}

// atomicMasses in unified atomic mass units (AME2016).
var atomicMasses = map[string]float64{
	"H1": 1.00782503, "H2": 2.01410178, "H3": 3.01604928,
	"He3": 3.01602932, "He4": 4.00260325,
	"Li6": 6.01512289, "Li7": 7.01600344,
	"Be9": 9.01218307,
	"B10": 10.01293695, "B11": 11.00930536,
	"C12": 12.0, "C13": 13.00335484,
	"N14": 14.00307401, "N15": 15.00010890,
	"O16": 15.99491462, "O17": 16.99913176, "O18": 17.99915961,
	"F19":  18.99840316,
	"Ne20": 19.99244018, "Ne21": 20.99384669, "Ne22": 21.99138511,
	"Na23": 22.98976928,
	"Mg24": 23.98504170, "Mg25": 24.98583698, "Mg26": 25.98259297,
	"Al27": 26.98153853,
	"Si28": 27.97692653, "Si29": 28.97649466, "Si30": 29.97377014,
	"P31": 30.97376200,
	"S32": 31.97207117, "S33": 32.97145891, "S34": 33.96786700, "S36": 35.96708071,
	"Cl35": 34.96885268, "Cl37": 36.96590260,
	"Ar36": 35.96754511, "Ar38": 37.96273211, "Ar40": 39.96238312,
	"K39": 38.96370649, "K40": 39.96399817, "K41": 40.96182526,
	"Ca40": 39.96259086, "Ca42": 41.95861783, "Ca43": 42.95876644, "Ca44": 43.95548156, "Ca46": 45.95368900, "Ca48": 47.95252276,
	"Ti46": 45.95262772, "Ti47": 46.95175879, "Ti48": 47.94794198, "Ti49": 48.94786568, "Ti50": 49.94478689,
	"V50": 49.94715601, "V51": 50.94395704,
	"Cr50": 49.94604183, "Cr52": 51.94050623, "Cr53": 52.94064815, "Cr54": 53.93887916,
	"Mn55": 54.93804391,
	"Fe54": 53.93960899, "Fe56": 55.93493633, "Fe57": 56.93539284, "Fe58": 57.93327443,
	"Co59": 58.93319429,
	"Ni58": 57.93534241, "Ni60": 59.93078588, "Ni61": 60.93105557, "Ni62": 61.92834537, "Ni64": 63.92796682,
	"Cu63": 62.92959772, "Cu65": 64.92778970,
	"Zn64": 63.92914201, "Zn66": 65.92603381, "Zn67": 66.92712775, "Zn68": 67.92484455, "Zn70": 69.9253192,
	"Zr90": 89.9046977, "Zr91": 90.9056396, "Zr92": 91.9050347, "Zr94": 93.9063108, "Zr96": 95.9082714,
	"Nb93": 92.9063730,
	"Mo92": 91.90680796, "Mo94": 93.90508490, "Mo95": 94.90583877, "Mo96": 95.90467612, "Mo97": 96.90601812, "Mo98": 97.90540482, "Mo100": 99.9074718,
	"Ag107": 106.9050916, "Ag109": 108.9047553,
	"Ta180": 179.9474648, "Ta181": 180.9479958,
	"W180": 179.9467108, "W182": 181.94820394, "W183": 182.95022275, "W184": 183.95093092, "W186": 185.9543628,
	"Pb204": 203.973044, "Pb206": 205.9744653, "Pb207": 206.9758969, "Pb208": 207.9766521,
	"Bi209": 208.9803991,
	"Th232": 232.0380558,
	"U233": 233.0396352, "U234": 234.0409523, "U235": 235.0439301, "U236": 236.0455680, "U238": 238.0507884,
	"Np237": 237.0481734,
	"Pu238": 238.0495599, "Pu239": 239.0521634, "Pu240": 240.0538135, "Pu241": 241.0568515, "Pu242": 242.0587426,
	"Am241": 241.0568291,
}

// Nuclear constants for the mass model, in u and MeV.
const (
	hydrogenMass = 1.00782503223
	neutronMass  = 1.00866491595
	mevPerU      = 931.49410242
)

// estimateMass returns the atomic mass in u predicted by the liquid-drop
// (Bethe-Weizsäcker) binding energy. It is within about 1e-4 relative of
// measured masses for A above 20.
func estimateMass(z, a int) float64 {
	const (
		volume    = 15.75
		surface   = 17.8
		coulomb   = 0.711
		asymmetry = 23.7
		pairing   = 11.18
	)
	fa, fz := float64(a), float64(z)
	n := a - z
	b := volume*fa - surface*math.Pow(fa, 2.0/3) - coulomb*fz*(fz-1)/math.Cbrt(fa) -
		asymmetry*float64((n-z)*(n-z))/fa
	switch {
	case z%2 == 0 && n%2 == 0:
		b += pairing / math.Sqrt(fa)
	case z%2 == 1 && n%2 == 1:
		b -= pairing / math.Sqrt(fa)
	}
	return fz*hydrogenMass + float64(n)*neutronMass - b/mevPerU
}

// AtomicMass returns the atomic mass of a nuclide in u. Nuclides absent from
// the measured table get a liquid-drop estimate; ok reports whether the
// measured value was used. A malformed id returns 0.
func AtomicMass(nuclide string) (mass float64, ok bool) {
	base := nuclide
	if i := strings.Index(base, "_m"); i >= 0 {
		base = base[:i]
	}
	if m, found := atomicMasses[base]; found {
		return m, true
	}
	id, err := ParseID(nuclide)
	if err != nil {
		return 0, false
	}
	if id.A < 20 || id.A < id.Z {
		// the drop model is poor for light nuclei
		return float64(id.A), false
	}
	return estimateMass(id.Z, id.A), false
}
